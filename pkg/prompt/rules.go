package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-mdform/pkg/htmlform"
)

// Rules maps the native validation attributes of a control to ozzo rules:
// required, pattern (anchored like the browser does), type=email, type=url
// and numeric min/max. Empty values only fail the required rule.
func Rules(control htmlform.Control) []validation.Rule {
	var rules []validation.Rule
	if control.Required {
		rules = append(rules, validation.Required.Error("is required"))
	}
	if control.Kind != htmlform.KindInput {
		return rules
	}

	if pattern := strings.TrimSpace(control.Pattern); pattern != "" {
		if re, err := regexp.Compile("^(?:" + pattern + ")$"); err == nil {
			rules = append(rules, validation.Match(re).Error("does not match the requested format"))
		}
	}

	switch control.Type {
	case "email":
		rules = append(rules, is.EmailFormat.Error("must be a valid email address"))
	case "url":
		rules = append(rules, is.URL.Error("must be a valid URL"))
	case "number", "range":
		rules = append(rules, validation.By(numberInRange(control.Min, control.Max)))
	}
	return rules
}

// Check validates value against the control's rules.
func Check(control htmlform.Control, value string) error {
	return validation.Validate(value, Rules(control)...)
}

func numberInRange(minRaw, maxRaw string) validation.RuleFunc {
	return func(value any) error {
		raw, _ := value.(string)
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		number, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.New("must be a number")
		}
		if bound, err := strconv.ParseFloat(strings.TrimSpace(minRaw), 64); err == nil && number < bound {
			return fmt.Errorf("must be no less than %s", strings.TrimSpace(minRaw))
		}
		if bound, err := strconv.ParseFloat(strings.TrimSpace(maxRaw), 64); err == nil && number > bound {
			return fmt.Errorf("must be no greater than %s", strings.TrimSpace(maxRaw))
		}
		return nil
	}
}
