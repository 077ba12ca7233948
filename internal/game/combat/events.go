package combat

// Event is one structured narration record. The set of implementations is
// closed: RoundStarted, AttackDeclared, HitResolved, Miss, Damaged, Downed,
// Recovered, Eliminated, and MatchOver.
type Event interface {
	// Kind returns a stable snake_case name for the event type.
	Kind() string
	event()
}

// Sink receives every event synchronously, in order. A nil Sink discards events.
type Sink func(Event)

// RoundStarted opens a turn. Each scheduler pick is one round.
type RoundStarted struct {
	Turn int
}

// AttackDeclared names the attacker chosen by the scheduler and the defender
// chosen by the resolver.
type AttackDeclared struct {
	Attacker  Ref
	Defender  Ref
	Readiness int
}

// HitResolved reports a successful hit roll.
type HitResolved struct {
	Attacker Ref
	Defender Ref
	Roll     int
	Accuracy int
	Dodge    int
	Critical bool
}

// Miss reports a failed hit roll. No health changes.
type Miss struct {
	Attacker Ref
	Defender Ref
	Roll     int
	Accuracy int
	Dodge    int
}

// Damaged reports damage applied after a hit.
type Damaged struct {
	Attacker   Ref
	Defender   Ref
	DamageRoll int
	Amount     int
	Remaining  int
}

// Downed reports a combatant reaching zero health.
type Downed struct {
	Combatant  Ref
	Knockdowns int
}

// Recovered reports a downed combatant getting back up.
type Recovered struct {
	Combatant  Ref
	Health     int
	Knockdowns int
}

// Eliminated reports a combatant permanently out of the match.
type Eliminated struct {
	Combatant Ref
}

// MatchOver closes the match. Draw is set only under a turn cap.
type MatchOver struct {
	Winner Team
	Draw   bool
	Turns  int
}

func (RoundStarted) Kind() string   { return "round_started" }
func (AttackDeclared) Kind() string { return "attack_declared" }
func (HitResolved) Kind() string    { return "hit_resolved" }
func (Miss) Kind() string           { return "miss" }
func (Damaged) Kind() string        { return "damaged" }
func (Downed) Kind() string         { return "downed" }
func (Recovered) Kind() string      { return "recovered" }
func (Eliminated) Kind() string     { return "eliminated" }
func (MatchOver) Kind() string      { return "match_over" }

func (RoundStarted) event()   {}
func (AttackDeclared) event() {}
func (HitResolved) event()    {}
func (Miss) event()           {}
func (Damaged) event()        {}
func (Downed) event()         {}
func (Recovered) event()      {}
func (Eliminated) event()     {}
func (MatchOver) event()      {}
