package report

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/fightsim/internal/game/combat"
)

// NewZapSink returns a sink that logs every event at debug level with
// structured fields, tagged with matchID. When debug is disabled on logger
// the sink returns before building any fields.
//
// Precondition: logger must not be nil.
func NewZapSink(logger *zap.Logger, matchID uuid.UUID) combat.Sink {
	id := zap.String("match_id", matchID.String())
	return func(e combat.Event) {
		ce := logger.Check(zapcore.DebugLevel, "combat event")
		if ce == nil {
			return
		}
		fields := append([]zap.Field{id, zap.String("event", e.Kind())}, EventFields(e)...)
		ce.Write(fields...)
	}
}

// EventFields returns the structured fields describing e.
func EventFields(e combat.Event) []zap.Field {
	switch ev := e.(type) {
	case combat.RoundStarted:
		return []zap.Field{zap.Int("turn", ev.Turn)}
	case combat.AttackDeclared:
		return []zap.Field{ref("attacker", ev.Attacker), ref("defender", ev.Defender), zap.Int("readiness", ev.Readiness)}
	case combat.HitResolved:
		return []zap.Field{
			ref("attacker", ev.Attacker), ref("defender", ev.Defender),
			zap.Int("roll", ev.Roll), zap.Int("accuracy", ev.Accuracy), zap.Int("dodge", ev.Dodge),
			zap.Bool("critical", ev.Critical),
		}
	case combat.Miss:
		return []zap.Field{
			ref("attacker", ev.Attacker), ref("defender", ev.Defender),
			zap.Int("roll", ev.Roll), zap.Int("accuracy", ev.Accuracy), zap.Int("dodge", ev.Dodge),
		}
	case combat.Damaged:
		return []zap.Field{
			ref("attacker", ev.Attacker), ref("defender", ev.Defender),
			zap.Int("damage_roll", ev.DamageRoll), zap.Int("amount", ev.Amount), zap.Int("remaining", ev.Remaining),
		}
	case combat.Downed:
		return []zap.Field{ref("combatant", ev.Combatant), zap.Int("knockdowns", ev.Knockdowns)}
	case combat.Recovered:
		return []zap.Field{ref("combatant", ev.Combatant), zap.Int("health", ev.Health), zap.Int("knockdowns", ev.Knockdowns)}
	case combat.Eliminated:
		return []zap.Field{ref("combatant", ev.Combatant)}
	case combat.MatchOver:
		return []zap.Field{zap.Stringer("winner", ev.Winner), zap.Bool("draw", ev.Draw), zap.Int("turns", ev.Turns)}
	}
	return nil
}

func ref(key string, r combat.Ref) zap.Field {
	return zap.String(key, r.Team.String()+"/"+r.Name)
}
