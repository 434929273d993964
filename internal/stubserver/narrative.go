package stubserver

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/icebreak-chat/icebreak-go/internal/api"
)

var scenarios = []struct {
	ID        string
	Title     string
	Setup     string
	MaxAgents int
}{
	{
		ID:        "lifeboat",
		Title:     "The Lifeboat",
		Setup:     "The ship is going down. One lifeboat, not enough seats. The crew must decide who boards.",
		MaxAgents: 8,
	},
	{
		ID:        "mars_outpost",
		Title:     "Mars Outpost Alpha",
		Setup:     "A meteor strike cracked the oxygen reserve. The outpost crew must ration what remains.",
		MaxAgents: 6,
	},
	{
		ID:        "expedition_blizzard",
		Title:     "Whiteout at Camp Four",
		Setup:     "A blizzard pins the expedition above the icefall. Shelter fits only part of the team.",
		MaxAgents: 6,
	},
}

var gameMasters = []api.GameMaster{
	{ID: "gm_warm", Name: "Aulis", Difficulty: "forgiving"},
	{ID: "gm_fair", Name: "Mercer", Difficulty: "balanced"},
	{ID: "gm_cruel", Name: "Vesna", Difficulty: "ruthless"},
}

var stockNPCs = []api.CastMember{
	{Name: "Priya", Persona: "A pragmatic engineer who trusts numbers over feelings"},
	{Name: "Theo", Persona: "A charming talker who has never held a rope in his life"},
	{Name: "Ingrid", Persona: "A retired medic, calm under pressure, slow to forgive"},
	{Name: "Marco", Persona: "A nervous first-timer who asks the questions everyone avoids"},
	{Name: "Sana", Persona: "A quiet navigator who notices everything"},
	{Name: "Dmitri", Persona: "A veteran who measures people by what they carry"},
	{Name: "Lou", Persona: "A cook with strong opinions and a stronger grip"},
}

// gameSession is one narrative run. Turns are scripted: the stub answers
// every instruction with a canned GM beat referencing a cast member, which
// is enough to exercise the client's parsing and playback paths.
type gameSession struct {
	sessionID  string
	scenarioID string
	scenario   string
	setup      string
	gm         api.GameMaster
	agents     []api.CastMember
	dialogue   []string
	turns      int
	gameOver   bool
	outcome    []string
}

var gmBeats = []string{
	"%s: We don't have time to argue about this.",
	"%s: I say we draw lots and live with it.",
	"%s: Listen. Someone has to say what we're all thinking.",
	"%s: I've seen worse. We hold together or we don't hold at all.",
}

func newGameSession(scenarioID, gmID, name, persona string) (*gameSession, error) {
	var scen *struct {
		ID        string
		Title     string
		Setup     string
		MaxAgents int
	}
	for i := range scenarios {
		if scenarios[i].ID == scenarioID {
			scen = &scenarios[i]
			break
		}
	}
	var gm *api.GameMaster
	for i := range gameMasters {
		if gameMasters[i].ID == gmID {
			gm = &gameMasters[i]
			break
		}
	}
	if scen == nil || gm == nil {
		return nil, fmt.Errorf("invalid scenario_id or gm_id")
	}

	cast := []api.CastMember{{Name: name, Persona: persona}}
	npcs := make([]api.CastMember, len(stockNPCs))
	copy(npcs, stockNPCs)
	rand.Shuffle(len(npcs), func(i, j int) { npcs[i], npcs[j] = npcs[j], npcs[i] })
	for _, npc := range npcs {
		if len(cast) >= scen.MaxAgents {
			break
		}
		if strings.EqualFold(npc.Name, name) {
			continue
		}
		cast = append(cast, npc)
	}

	return &gameSession{
		sessionID:  uuid.NewString(),
		scenarioID: scen.ID,
		scenario:   scen.Title,
		setup:      scen.Setup,
		gm:         *gm,
		agents:     cast,
	}, nil
}

func (g *gameSession) submitTurn(agentName, instruction string) api.TurnResult {
	g.dialogue = append(g.dialogue, agentName+": "+instruction)

	npc := g.agents[(g.turns+1)%len(g.agents)]
	beat := fmt.Sprintf(gmBeats[g.turns%len(gmBeats)], npc.Name)
	g.dialogue = append(g.dialogue, beat)
	g.turns++

	// The stub ends every run after a fixed number of turns so the
	// game-over and story screens are reachable in development.
	if g.turns >= 8 && !g.gameOver {
		g.gameOver = true
		for i, a := range g.agents {
			if i%2 == 0 {
				g.outcome = append(g.outcome, a.Name)
			}
		}
	}

	return api.TurnResult{
		DialogueSegment: agentName + ": " + instruction + "\n" + beat,
		PhaseLabel:      "Active Chat",
		Summary:         fmt.Sprintf("Ongoing conversation with %d participants", len(g.agents)),
		GameOver:        g.gameOver,
		Outcome:         g.outcome,
	}
}

func (g *gameSession) info() api.GameInfo {
	return api.GameInfo{
		SessionID:     g.sessionID,
		ScenarioTitle: g.scenario,
		InitialSetup:  g.setup,
		GMName:        g.gm.Name,
		GMDifficulty:  g.gm.Difficulty,
		Phase:         "active",
		Agents:        g.agents,
		GameOver:      g.gameOver,
		Outcome:       g.outcome,
	}
}

func (g *gameSession) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n## GM: %s (%s)\n\n## Setup\n%s\n\n## Dialogue\n%s",
		g.scenario, g.gm.Name, g.gm.Difficulty, g.setup, strings.Join(g.dialogue, "\n\n"))
	if g.gameOver && len(g.outcome) > 0 {
		fmt.Fprintf(&b, "\n\n## %s\n%s", outcomeLabel(g.scenarioID), strings.Join(g.outcome, ", "))
	}
	return b.String()
}

func outcomeLabel(scenarioID string) string {
	switch scenarioID {
	case "lifeboat":
		return "Survivors"
	case "bank_heist":
		return "Released"
	case "mars_outpost":
		return "Oxygen Recipients"
	case "submarine_leak":
		return "Dive Team"
	case "expedition_blizzard":
		return "Sheltered"
	case "time_paradox":
		return "Stabilized"
	}
	return "Outcome"
}
