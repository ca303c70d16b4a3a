package theme

import (
	"strings"
	"testing"
)

const gpl = `GIMP Palette
Name: two
Columns: 2
# comment
  0   0   0	black
255 255 255	white
`

func TestReadGPL(t *testing.T) {
	p, err := ReadGPL(strings.NewReader(gpl))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
	if got := p.Lookup(2); got != (RGB{255, 255, 255}) {
		t.Errorf("Lookup(2) = %v", got)
	}

	if _, err := ReadGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("empty palette accepted")
	}
}

func TestChannelColors(t *testing.T) {
	th := New(Plasma())
	if th.Channel(1, 4) == th.Channel(4, 4) {
		t.Error("first and last channel share a color")
	}
	if th.Channel(0, 4) != th.Muted() {
		t.Error("no channel should be muted")
	}
	if got := th.Channel(1, 4); got != th.FG() {
		t.Errorf("first channel = %v, want %v", got, th.FG())
	}
}

func TestLoadOrDefault(t *testing.T) {
	if p := LoadOrDefault("/nonexistent/palette.gpl"); p.Name != "plasma" {
		t.Errorf("fallback = %q", p.Name)
	}
}
