package tuner

// Note is a named reference pitch.
type Note struct {
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
}

// StandardTuning lists the six open strings of a guitar in standard
// tuning, low to high. The frequencies are the equal-tempered
// two-decimal reference values and are part of the public contract:
// they must not be recomputed or rounded differently.
var StandardTuning = []Note{
	{Name: "E2", Frequency: 82.41},
	{Name: "A2", Frequency: 110.00},
	{Name: "D3", Frequency: 146.83},
	{Name: "G3", Frequency: 196.00},
	{Name: "B3", Frequency: 246.94},
	{Name: "E4", Frequency: 329.63},
}

var noteFrequencies = buildNoteIndex()

func buildNoteIndex() map[string]float64 {
	idx := make(map[string]float64, len(StandardTuning))
	for _, n := range StandardTuning {
		idx[n.Name] = n.Frequency
	}
	return idx
}

// NoteFrequency returns the reference frequency for a note name.
func NoteFrequency(name string) (float64, bool) {
	f, ok := noteFrequencies[name]
	return f, ok
}
