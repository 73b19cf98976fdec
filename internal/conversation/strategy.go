package conversation

import (
	"ninjaengine/internal/domain"
	"ninjaengine/internal/response"
)

// overrideTurnFinalWarning forces final_warning once a call runs past
// this many turns, regardless of the (stage, personality) table.
const overrideTurnFinalWarning = 8

// overrideTurnFirmDecline forces firm_decline once an aggressive caller
// has run past this many turns.
const overrideTurnFirmDecline = 5

// StrategyTable maps (stage, personality) to a response Strategy.
type StrategyTable map[domain.Stage]map[response.Personality]response.Strategy

// DefaultStrategyTable returns the spec's baseline (stage, personality)
// strategy assignments. Every handling_* stage and the decline/rejection
// stages get an entry per personality; unmapped combinations fall back
// to explain_not_interested.
func DefaultStrategyTable() StrategyTable {
	handling := map[response.Personality]response.Strategy{
		response.PersonalityPolite:       response.StrategyGentleDecline,
		response.PersonalityDirect:       response.StrategyExplainNotInterested,
		response.PersonalityHumorous:     response.StrategyWittyResponse,
		response.PersonalityProfessional: response.StrategyProfessionalResponse,
	}
	decline := map[response.Personality]response.Strategy{
		response.PersonalityPolite:       response.StrategyGentleDecline,
		response.PersonalityDirect:       response.StrategyClearRefusal,
		response.PersonalityHumorous:     response.StrategyDeflectWithHumor,
		response.PersonalityProfessional: response.StrategyProfessionalResponse,
	}
	firm := map[response.Personality]response.Strategy{
		response.PersonalityPolite:       response.StrategyFirmDecline,
		response.PersonalityDirect:       response.StrategyClearRefusal,
		response.PersonalityHumorous:     response.StrategyFirmDecline,
		response.PersonalityProfessional: response.StrategyFirmDecline,
	}

	return StrategyTable{
		domain.StageInitial:            handling,
		domain.StageHandlingSales:      handling,
		domain.StageHandlingLoan:       handling,
		domain.StageHandlingInvestment: handling,
		domain.StageHandlingInsurance:  handling,
		domain.StageHandlingTelecom:    handling,
		domain.StagePoliteDecline:      decline,
		domain.StageFirmRejection:      firm,
		domain.StageHangUpWarning: {
			response.PersonalityPolite:       response.StrategyFinalWarning,
			response.PersonalityDirect:       response.StrategyFinalWarning,
			response.PersonalityHumorous:     response.StrategyFinalWarning,
			response.PersonalityProfessional: response.StrategyFinalWarning,
		},
		domain.StageCallEnd: {
			response.PersonalityPolite:       response.StrategyImmediateHangup,
			response.PersonalityDirect:       response.StrategyImmediateHangup,
			response.PersonalityHumorous:     response.StrategyImmediateHangup,
			response.PersonalityProfessional: response.StrategyImmediateHangup,
		},
	}
}

// selectStrategy resolves (stage, personality) through the table, then
// applies the turn-count/aggression overrides in spec.md §4.6 step 4.
func selectStrategy(table StrategyTable, stage domain.Stage, personality response.Personality, turnCount int, emotionalTone string) response.Strategy {
	strategy := response.StrategyExplainNotInterested
	if byStage, ok := table[stage]; ok {
		if s, ok := byStage[personality]; ok {
			strategy = s
		}
	}

	if turnCount > overrideTurnFinalWarning {
		return response.StrategyFinalWarning
	}
	if turnCount > overrideTurnFirmDecline && emotionalTone == "aggressive" {
		return response.StrategyFirmDecline
	}
	return strategy
}
