package browser_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/raysh454/webshot/internal/browser"
	"github.com/raysh454/webshot/internal/logging"
)

func TestList_ContainsBuiltinDrivers(t *testing.T) {
	t.Parallel()
	names := browser.List()
	for _, want := range []string{"chromedp", "playwright"} {
		if !slices.Contains(names, want) {
			t.Errorf("List() = %v, missing %q", names, want)
		}
	}
}

func TestNew_DefaultsToChromedp(t *testing.T) {
	t.Parallel()
	d, err := browser.New("", logging.NewNopLogger())
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	defer d.Close()
	if d.Name() != "chromedp" {
		t.Errorf("default driver = %q, want chromedp", d.Name())
	}
}

func TestNew_NameIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	d, err := browser.New("ChromeDP", logging.NewNopLogger())
	if err != nil {
		t.Fatalf("New(ChromeDP): %v", err)
	}
	defer d.Close()
	if d.Name() != "chromedp" {
		t.Errorf("driver = %q, want chromedp", d.Name())
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := browser.New("netscape", logging.NewNopLogger())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), "netscape") {
		t.Errorf("error should name the unknown driver: %v", err)
	}
}

func TestRegister_IgnoresEmptyNameAndNilBuilder(t *testing.T) {
	t.Parallel()
	before := len(browser.List())
	browser.Register("", browser.NewChromedpDriver)
	browser.Register("nilbuilder", nil)
	if got := len(browser.List()); got != before {
		t.Errorf("registry size changed from %d to %d", before, got)
	}
}
