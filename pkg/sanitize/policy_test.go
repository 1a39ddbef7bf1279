package sanitize_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/goliatone/go-mdform/pkg/sanitize"
)

const feedbackForm = `<h2>Rendered from Markdown</h2>
<form data-form="feedback">
  <label>Name<br/><input type="text" name="name" placeholder="Jane Doe" required /></label><br/>
  <label>Rating<br/>
    <select name="rating" required>
      <option value="">Pick one</option>
      <option value="5">5 - Great</option>
    </select>
  </label><br/>
  <fieldset><legend>Features</legend>
    <input type="checkbox" name="feature" value="UI" checked /> UI
  </fieldset>
  <label>Comments<br/><textarea name="comment" rows="3" cols="40"></textarea></label><br/>
  <input type="number" name="age" min="1" max="120" step="1" id="age" class="narrow" autocomplete="off" />
  <input type="text" name="code" pattern="[A-Z]{3}" size="3" />
  <select name="tags" multiple><option value="a">a</option></select>
  <button type="submit">Send</button>
</form>`

func TestHTML_PreservesFormControls(t *testing.T) {
	out := sanitize.HTML(feedbackForm)

	for _, fragment := range []string{
		"<h2>Rendered from Markdown</h2>",
		`<form data-form="feedback">`,
		`type="text"`,
		`name="name"`,
		`placeholder="Jane Doe"`,
		"required",
		`<select name="rating"`,
		`<option value="5">5 - Great</option>`,
		"<fieldset>",
		"<legend>Features</legend>",
		`type="checkbox"`,
		"checked",
		`<textarea name="comment" rows="3" cols="40"></textarea>`,
		`min="1"`,
		`max="120"`,
		`step="1"`,
		`id="age"`,
		`class="narrow"`,
		`autocomplete="off"`,
		`pattern="[A-Z]{3}"`,
		`size="3"`,
		"multiple",
		`<button type="submit">Send</button>`,
		"<br/>",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected sanitized output to contain %q\n%s", fragment, out)
		}
	}
}

func TestHTML_KeepsBareFormElements(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`<form><input name="n"></form>`, `<form><input name="n"></form>`},
		{`<label>Name</label>`, `<label>Name</label>`},
		{`<fieldset><legend>Features</legend></fieldset>`, `<fieldset><legend>Features</legend></fieldset>`},
		{`<select><option>One</option></select>`, `<select><option>One</option></select>`},
		{`<textarea>text</textarea>`, `<textarea>text</textarea>`},
		{`<button>Go</button>`, `<button>Go</button>`},
		{`<input>`, `<input>`},
		{`<form action="https://evil.example"><label>Name</label></form>`, `<form><label>Name</label></form>`},
	}
	for _, tc := range cases {
		if got := sanitize.HTML(tc.input); got != tc.want {
			t.Fatalf("HTML(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestHTML_EmitsEachAttributeOnce(t *testing.T) {
	input := `<h2 id="title" class="lead">T</h2>` + feedbackForm
	tokenizer := html.NewTokenizer(strings.NewReader(sanitize.HTML(input)))

	seenID := false
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		token := tokenizer.Token()
		counts := map[string]int{}
		for _, attr := range token.Attr {
			counts[attr.Key]++
			if counts[attr.Key] > 1 {
				t.Fatalf("attribute %q repeated on <%s>: %v", attr.Key, token.Data, token.Attr)
			}
			if attr.Key == "id" {
				seenID = true
			}
		}
	}
	if !seenID {
		t.Fatalf("expected id attributes to survive")
	}
}

func TestHTML_StripsScriptVectors(t *testing.T) {
	cases := map[string]struct {
		input     string
		forbidden []string
	}{
		"script tag": {
			input:     `<form><script>alert('x')</script><input name="a"></form>`,
			forbidden: []string{"<script", "</script"},
		},
		"onerror attribute": {
			input:     `<img src="x.png" onerror="alert(1)">`,
			forbidden: []string{"onerror"},
		},
		"onclick on button": {
			input:     `<button type="submit" onclick="steal()">Go</button>`,
			forbidden: []string{"onclick", "steal"},
		},
		"javascript url": {
			input:     `<a href="javascript:alert(1)">click</a>`,
			forbidden: []string{"javascript:"},
		},
		"form action": {
			input:     `<form action="https://evil.example" method="post"><input name="a"></form>`,
			forbidden: []string{"action=", "evil.example", "method="},
		},
		"formaction": {
			input:     `<button formaction="https://evil.example">x</button>`,
			forbidden: []string{"formaction"},
		},
		"style element": {
			input:     `<style>body{display:none}</style><p>hi</p>`,
			forbidden: []string{"<style", "display:none"},
		},
		"iframe": {
			input:     `<iframe src="https://evil.example"></iframe>`,
			forbidden: []string{"<iframe"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out := strings.ToLower(sanitize.HTML(tc.input))
			for _, needle := range tc.forbidden {
				if strings.Contains(out, needle) {
					t.Fatalf("expected %q to be removed, got %q", needle, out)
				}
			}
		})
	}
}

func TestHTML_NeverEmitsScriptOrOnerror(t *testing.T) {
	payloads := []string{
		`<script>alert(1)</script>`,
		`<SCRIPT SRC="https://evil.example/x.js"></SCRIPT>`,
		`<img src=x onerror=alert(1)>`,
		`<input name="a" onerror="alert(1)">`,
		`<svg><script>alert(1)</script></svg>`,
		`<select name="s" onerror="x"><option onerror="y">o</option></select>`,
		`<textarea name="t" onerror="x">text</textarea>`,
		`<scr<script>ipt>alert(1)</script>`,
	}
	wrappers := []string{
		"%s",
		"<form>%s</form>",
		"<p>before</p>%s<p>after</p>",
		"<label>%s</label>",
	}

	for _, payload := range payloads {
		for _, wrapper := range wrappers {
			input := strings.Replace(wrapper, "%s", payload, 1)
			out := strings.ToLower(sanitize.HTML(input))
			if strings.Contains(out, "<script") {
				t.Fatalf("script tag survived for %q: %q", input, out)
			}
			if strings.Contains(out, "onerror") {
				t.Fatalf("onerror survived for %q: %q", input, out)
			}
		}
	}
}

func TestHTML_EmptyInput(t *testing.T) {
	if got := sanitize.HTML("   "); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := sanitize.Bytes(nil); got != nil {
		t.Fatalf("expected nil output, got %q", got)
	}
}

func TestAllowlistExcludesExecutionVectors(t *testing.T) {
	for _, element := range sanitize.AllowedElements() {
		if element == "script" || element == "style" || element == "iframe" {
			t.Fatalf("allowlist must not contain %q", element)
		}
	}
	for _, attr := range sanitize.AllowedAttributes() {
		if strings.HasPrefix(attr, "on") || attr == "action" || attr == "formaction" || attr == "href" || attr == "src" {
			t.Fatalf("allowlist must not contain attribute %q", attr)
		}
	}
	if sanitize.Policy() != sanitize.Policy() {
		t.Fatalf("expected shared policy instance")
	}
}
