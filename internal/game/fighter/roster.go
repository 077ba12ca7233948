package fighter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/fightsim/internal/game/ruleset"
	"github.com/cory-johannsen/fightsim/internal/game/stats"
)

// Entry is the YAML form of one fighter.
type Entry struct {
	Name       string `yaml:"name"`
	Health     int    `yaml:"health"`
	Attack     int    `yaml:"attack"`
	Defense    int    `yaml:"defense"`
	Speed      int    `yaml:"speed"`
	Accuracy   int    `yaml:"accuracy"`
	Dodge      int    `yaml:"dodge"`
	Conviction int    `yaml:"conviction"`
}

// Points converts the entry's stat fields into stats.Points.
func (e Entry) Points() stats.Points {
	var p stats.Points
	p[stats.Health] = e.Health
	p[stats.Attack] = e.Attack
	p[stats.Defense] = e.Defense
	p[stats.Speed] = e.Speed
	p[stats.Accuracy] = e.Accuracy
	p[stats.Dodge] = e.Dodge
	p[stats.Conviction] = e.Conviction
	return p
}

// EntryOf returns the YAML form of f.
func EntryOf(f *Fighter) Entry {
	return Entry{
		Name:       f.Name(),
		Health:     f.Points(stats.Health),
		Attack:     f.Points(stats.Attack),
		Defense:    f.Points(stats.Defense),
		Speed:      f.Points(stats.Speed),
		Accuracy:   f.Points(stats.Accuracy),
		Dodge:      f.Points(stats.Dodge),
		Conviction: f.Points(stats.Conviction),
	}
}

// Roster is a named, ordered list of fighters; one roster file is one team.
type Roster struct {
	Name     string
	Fighters []*Fighter
}

type rosterFile struct {
	Team     string  `yaml:"team"`
	Fighters []Entry `yaml:"fighters"`
}

// LoadRosterFromBytes parses a roster document and validates every fighter
// against pb.
//
// Postcondition: Returns a Roster with at least one fighter and unique names,
// or an error naming the first offending entry.
func LoadRosterFromBytes(data []byte, pb ruleset.PointBuy) (*Roster, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing roster YAML: %w", err)
	}
	if len(rf.Fighters) == 0 {
		return nil, fmt.Errorf("roster %q has no fighters", rf.Team)
	}

	seen := make(map[string]bool, len(rf.Fighters))
	r := &Roster{Name: rf.Team, Fighters: make([]*Fighter, 0, len(rf.Fighters))}
	for i, e := range rf.Fighters {
		f, err := New(e.Name, e.Points(), pb)
		if err != nil {
			return nil, fmt.Errorf("roster entry %d: %w", i, err)
		}
		if seen[f.Name()] {
			return nil, fmt.Errorf("roster entry %d: duplicate fighter name %q", i, f.Name())
		}
		seen[f.Name()] = true
		r.Fighters = append(r.Fighters, f)
	}
	if r.Name == "" {
		r.Name = r.Fighters[0].Name()
	}
	return r, nil
}

// LoadRoster reads and validates the roster file at path.
func LoadRoster(path string, pb ruleset.PointBuy) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	r, err := LoadRosterFromBytes(data, pb)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return r, nil
}

// LoadRosterDir reads all *.yaml files in dir, in name order.
//
// Postcondition: Returns all rosters or an error on the first parse or
// validation failure; on error, the partial result is discarded.
func LoadRosterDir(dir string, pb ruleset.PointBuy) ([]*Roster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading roster dir %q: %w", dir, err)
	}

	var rosters []*Roster
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		r, err := LoadRoster(filepath.Join(dir, entry.Name()), pb)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, r)
	}
	return rosters, nil
}

// LoadRosters loads path as a single roster file or, if it is a directory,
// every roster inside it.
func LoadRosters(path string, pb ruleset.PointBuy) ([]*Roster, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return LoadRosterDir(path, pb)
	}
	r, err := LoadRoster(path, pb)
	if err != nil {
		return nil, err
	}
	return []*Roster{r}, nil
}

// MarshalRoster encodes r as a roster YAML document.
func MarshalRoster(r *Roster) ([]byte, error) {
	rf := rosterFile{Team: r.Name, Fighters: make([]Entry, 0, len(r.Fighters))}
	for _, f := range r.Fighters {
		rf.Fighters = append(rf.Fighters, EntryOf(f))
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return nil, fmt.Errorf("encoding roster %q: %w", r.Name, err)
	}
	return data, nil
}

// SaveRoster writes r to path as YAML.
func SaveRoster(path string, r *Roster) error {
	data, err := MarshalRoster(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}

// Flatten returns every fighter across rosters, in roster order.
func Flatten(rosters []*Roster) []*Fighter {
	var out []*Fighter
	for _, r := range rosters {
		out = append(out, r.Fighters...)
	}
	return out
}
