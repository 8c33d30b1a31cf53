package pdfprobe

import (
	"strings"
	"testing"
)

type fakeDoc struct {
	pages []string
}

func (d *fakeDoc) NumPage() int { return len(d.pages) }
func (d *fakeDoc) PageText(i int) (string, error) {
	return d.pages[i], nil
}
func (d *fakeDoc) Close() error { return nil }

type fakeOpener struct{ doc *fakeDoc }

func (o fakeOpener) Open(string) (Doc, error) { return o.doc, nil }

func withFakeDoc(t *testing.T, pages []string) {
	t.Helper()
	prev := defaultOpener
	setDefaultOpener(fakeOpener{doc: &fakeDoc{pages: pages}})
	t.Cleanup(func() { setDefaultOpener(prev) })
}

func TestProbeScanWithoutText(t *testing.T) {
	withFakeDoc(t, []string{"", " ", "\n\n", "", ""})

	info, err := Probe("scan.pdf", 0)
	if err != nil {
		t.Fatal(err)
	}
	if info.HasTextLayer {
		t.Error("blank scan reported as having a text layer")
	}
	if info.Pages != 5 {
		t.Errorf("pages = %d, want 5", info.Pages)
	}
	if info.SampledChars != 0 {
		t.Errorf("sampled chars = %d, want 0", info.SampledChars)
	}
}

func TestProbeDetectsTextLayer(t *testing.T) {
	long := strings.Repeat("palabra ", 100)
	withFakeDoc(t, []string{long, long, long, long})

	info, err := Probe("digital.pdf", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !info.HasTextLayer {
		t.Error("text-bearing PDF not detected")
	}
	if info.SampledChars < DefaultThreshold {
		t.Errorf("sampled chars = %d, want >= %d", info.SampledChars, DefaultThreshold)
	}
}

func TestProbeEmptyDocument(t *testing.T) {
	withFakeDoc(t, nil)

	info, err := Probe("empty.pdf", 10)
	if err != nil {
		t.Fatal(err)
	}
	if info.Pages != 0 || info.HasTextLayer {
		t.Errorf("unexpected info for empty doc: %+v", info)
	}
}

func TestSampleIndices(t *testing.T) {
	if got := sampleIndices(2); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("sampleIndices(2) = %v", got)
	}
	got := sampleIndices(100)
	want := []int{0, 50, 99}
	if len(got) != len(want) {
		t.Fatalf("sampleIndices(100) = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sampleIndices(100)[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if got := sampleIndices(0); len(got) != 0 {
		t.Errorf("sampleIndices(0) = %v", got)
	}
}
