package prompt_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdform/pkg/htmlform"
	"github.com/goliatone/go-mdform/pkg/prompt"
	"github.com/goliatone/go-mdform/pkg/submission"
	"github.com/goliatone/go-mdform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	confirm      []bool
	selectIdx    []int
	multiIdx     [][]int
	textAreas    []string
	infoMessages []string
	messages     []string
	confirmCfgs  []prompt.ConfirmConfig
	selectCfgs   []prompt.SelectConfig
	multiCfgs    []prompt.SelectConfig
	inputPos     int
	passPos      int
	confirmPos   int
	selectPos    int
	multiPos     int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg prompt.InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	s.confirmCfgs = append(s.confirmCfgs, cfg)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg prompt.SelectConfig) ([]int, error) {
	s.messages = append(s.messages, cfg.Message)
	s.multiCfgs = append(s.multiCfgs, cfg)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestFill_FeedbackForm(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ana", "not-an-email", "a@x.io", ""},
		selectIdx: []int{0, 3},
		multiIdx:  [][]int{{0, 2}},
		textAreas: []string{""},
	}
	filler := prompt.New(prompt.WithPromptDriver(driver))

	entries, err := filler.Fill(context.Background(), testsupport.FeedbackForm(t))
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := []submission.Entry{
		{Name: "name", Value: "Ana"},
		{Name: "email", Value: "a@x.io"},
		{Name: "phone", Value: ""},
		{Name: "rating", Value: "5"},
		{Name: "feature", Value: "UI"},
		{Name: "feature", Value: "Support"},
		{Name: "comment", Value: ""},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	wantMessages := []string{"Name", "Email", "Email", "Phone", "Rating", "Rating", "Favorite Feature", "Comments"}
	if diff := cmp.Diff(wantMessages, driver.messages); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected two validation notices, got %v", driver.infoMessages)
	}

	pretty, err := submission.Collect(entries).Pretty()
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	wantPretty := `{
  "name": "Ana",
  "email": "a@x.io",
  "phone": "",
  "rating": "5",
  "feature": [
    "UI",
    "Support"
  ],
  "comment": ""
}`
	if diff := cmp.Diff(wantPretty, string(pretty)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_TogglesAndHidden(t *testing.T) {
	forms, err := htmlform.Parse(`<form>
<input type="hidden" name="token" value="t1"/>
<input type="checkbox" name="agree" required/> I agree
<input type="radio" name="size" value="s"/> Small
<input type="radio" name="size" value="l" checked/> Large
<input type="password" name="secret"/>
<input type="number" name="qty" min="1" max="5"/>
</form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	driver := &stubDriver{
		confirm:   []bool{false, true},
		selectIdx: []int{2},
		passwords: []string{"hunter2"},
		inputs:    []string{"9", "3"},
	}
	entries, err := prompt.New(prompt.WithPromptDriver(driver)).Fill(context.Background(), forms[0])
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	// The radio group is optional, so the third option skips it.
	want := []submission.Entry{
		{Name: "token", Value: "t1"},
		{Name: "agree", Value: "on"},
		{Name: "secret", Value: "hunter2"},
		{Name: "qty", Value: "3"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 2 || !strings.Contains(driver.infoMessages[1], "no greater than 5") {
		t.Fatalf("unexpected notices %v", driver.infoMessages)
	}
}

func TestFill_PassesChoiceConfigs(t *testing.T) {
	form := htmlform.Form{Name: "prefs", Controls: []htmlform.Control{
		{Kind: htmlform.KindSelect, Type: "select-one", Name: "size", Label: "Size", Options: []htmlform.Option{
			{Value: "s", Label: "Small"},
			{Value: "m", Label: "Medium", Selected: true},
		}},
		{Kind: htmlform.KindInput, Type: "checkbox", Name: "agree", Label: "Agree", Value: "yes", Checked: true},
		{Kind: htmlform.KindInput, Type: "radio", Name: "tone", Label: "Tone", Value: "warm", Caption: "Warm"},
		{Kind: htmlform.KindInput, Type: "radio", Name: "tone", Label: "Tone", Value: "cool", Caption: "Cool", Checked: true},
		{Kind: htmlform.KindSelect, Type: "select-multiple", Name: "tags", Label: "Tags", Multiple: true, Options: []htmlform.Option{
			{Value: "a", Label: "A", Selected: true},
			{Value: "b", Label: "B"},
		}},
	}}
	driver := &stubDriver{
		confirm:   []bool{true},
		selectIdx: []int{1, 1},
		multiIdx:  [][]int{{0}},
	}

	entries, err := prompt.New(prompt.WithPromptDriver(driver)).Fill(context.Background(), form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantEntries := []submission.Entry{
		{Name: "size", Value: "m"},
		{Name: "agree", Value: "yes"},
		{Name: "tone", Value: "cool"},
		{Name: "tags", Value: "a"},
	}
	if diff := cmp.Diff(wantEntries, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]prompt.ConfirmConfig{{Message: "Agree", Default: true}}, driver.confirmCfgs); diff != "" {
		t.Fatalf("confirm config mismatch (-want +got):\n%s", diff)
	}
	wantSelects := []prompt.SelectConfig{
		{Message: "Size", Options: []string{"Small", "Medium"}, DefaultIndex: 1},
		{Message: "Tone", Options: []string{"Warm", "Cool", "(none)"}, DefaultIndex: 1},
	}
	if diff := cmp.Diff(wantSelects, driver.selectCfgs); diff != "" {
		t.Fatalf("select config mismatch (-want +got):\n%s", diff)
	}
	wantMulti := []prompt.SelectConfig{{Message: "Tags", Options: []string{"A", "B"}, Defaults: []int{0}}}
	if diff := cmp.Diff(wantMulti, driver.multiCfgs); diff != "" {
		t.Fatalf("multi-select config mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_GivesUpAfterMaxAttempts(t *testing.T) {
	forms, err := htmlform.Parse(`<form><input name="code" pattern="[0-9]{3}"/></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	driver := &stubDriver{inputs: []string{"ab", "1234"}}

	_, err = prompt.New(prompt.WithPromptDriver(driver), prompt.WithMaxAttempts(2)).
		Fill(context.Background(), forms[0])
	if !errors.Is(err, prompt.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestFill_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prompt.New(prompt.WithPromptDriver(&stubDriver{})).Fill(ctx, testsupport.FeedbackForm(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	cases := []struct {
		name    string
		control htmlform.Control
		value   string
		wantErr bool
	}{
		{"required empty", htmlform.Control{Kind: htmlform.KindInput, Type: "text", Required: true}, "", true},
		{"optional empty email", htmlform.Control{Kind: htmlform.KindInput, Type: "email"}, "", false},
		{"bad email", htmlform.Control{Kind: htmlform.KindInput, Type: "email"}, "nope", true},
		{"good email", htmlform.Control{Kind: htmlform.KindInput, Type: "email"}, "a@x.io", false},
		{"pattern is anchored", htmlform.Control{Kind: htmlform.KindInput, Type: "text", Pattern: "[0-9]{3}"}, "1234", true},
		{"pattern match", htmlform.Control{Kind: htmlform.KindInput, Type: "text", Pattern: "[0-9]{3}-[0-9]{4}"}, "123-4567", false},
		{"not a number", htmlform.Control{Kind: htmlform.KindInput, Type: "number"}, "x", true},
		{"below min", htmlform.Control{Kind: htmlform.KindInput, Type: "number", Min: "2"}, "1", true},
		{"in range", htmlform.Control{Kind: htmlform.KindInput, Type: "range", Min: "0", Max: "10"}, "10", false},
		{"textarea ignores pattern", htmlform.Control{Kind: htmlform.KindTextArea, Pattern: "x"}, "y", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := prompt.Check(tc.control, tc.value)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Check(%q) error = %v, wantErr %v", tc.value, err, tc.wantErr)
			}
		})
	}
}
