package planner

import (
	"fmt"
	"strings"
	"sync"

	"ecofood/db"
)

// MemberStore is the assistant's view of roster persistence
type MemberStore interface {
	AddMember(householdID int64, member db.HouseholdMember) (*db.HouseholdMember, error)
}

// Assistant dialog stages. Each user message advances one step until
// the gathered member is confirmed and saved.
const (
	stageAskName      = "ask_name"
	stageAskRole      = "ask_role"
	stageAskAllergens = "ask_allergens"
	stageAskLikes     = "ask_likes"
	stageConfirm      = "confirm"
	stageCompleted    = "completed"
)

// AssistantReply is one turn of the dialog
type AssistantReply struct {
	SessionID    string              `json:"session_id"`
	Stage        string              `json:"stage"`
	AgentMessage string              `json:"agent_message"`
	Completed    bool                `json:"completed"`
	Member       *db.HouseholdMember `json:"member,omitempty"`
}

type assistantState struct {
	stage     string
	name      string
	role      string
	allergens []string
	likes     []string
}

// HouseholdAssistant guides a user through adding a household member
// one question at a time. Dialog state is held in memory per session
// id; nothing is persisted until the user confirms.
type HouseholdAssistant struct {
	mu       sync.Mutex
	sessions map[string]*assistantState
}

// NewHouseholdAssistant returns an assistant with no open sessions
func NewHouseholdAssistant() *HouseholdAssistant {
	return &HouseholdAssistant{sessions: make(map[string]*assistantState)}
}

// HandleMessage advances the dialog for one session. A first message
// for an unknown session opens it; a confirmed dialog saves the member
// through the store and closes the session.
func (a *HouseholdAssistant) HandleMessage(store MemberStore, householdID int64, sessionID, userMessage string) (*AssistantReply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, ok := a.sessions[sessionID]
	if !ok {
		a.sessions[sessionID] = &assistantState{stage: stageAskName, role: "Adult"}
		return reply(sessionID, stageAskName, "Hi! Let's add someone new. What's their name?"), nil
	}

	message := strings.TrimSpace(userMessage)

	switch state.stage {
	case stageAskName:
		if message == "" {
			return reply(sessionID, state.stage, "I didn't catch the name. Who are we adding?"), nil
		}
		state.name = message
		state.stage = stageAskRole
		return reply(sessionID, state.stage,
			fmt.Sprintf("Great! What role does %s have? (Adult, Child, Guest, ...)", state.name)), nil

	case stageAskRole:
		if message != "" {
			state.role = message
		}
		state.stage = stageAskAllergens
		return reply(sessionID, state.stage,
			"Any allergens to note? You can list several separated by commas, or say 'none'."), nil

	case stageAskAllergens:
		if !strings.EqualFold(message, "none") {
			state.allergens = splitLabels(message)
		}
		state.stage = stageAskLikes
		return reply(sessionID, state.stage,
			"What foods or cuisines do they enjoy? (comma separated)"), nil

	case stageAskLikes:
		if message != "" {
			state.likes = splitLabels(message)
		}
		state.stage = stageConfirm
		return reply(sessionID, state.stage,
			fmt.Sprintf("Here's what I gathered:\n%s\nType 'yes' to save or 'start over' to redo.",
				summarizeState(state))), nil

	case stageConfirm:
		lowered := strings.ToLower(message)
		if lowered == "start over" || lowered == "restart" {
			a.sessions[sessionID] = &assistantState{stage: stageAskName, role: "Adult"}
			return reply(sessionID, stageAskName, "No problem. Let's start again. What's the name?"), nil
		}
		if lowered != "yes" && lowered != "y" {
			return reply(sessionID, state.stage,
				"Please confirm by typing 'yes', or say 'start over' to redo."), nil
		}

		name := state.name
		if name == "" {
			name = "Unnamed"
		}
		member, err := store.AddMember(householdID, db.HouseholdMember{
			Name:          name,
			Role:          state.role,
			Allergens:     state.allergens,
			Likes:         state.likes,
			EatsBreakfast: true,
			EatsLunch:     true,
			EatsDinner:    true,
		})
		if err != nil {
			return nil, err
		}
		delete(a.sessions, sessionID)
		saved := reply(sessionID, stageCompleted,
			fmt.Sprintf("Saved %s! They're now part of the household.", member.Name))
		saved.Completed = true
		saved.Member = member
		return saved, nil
	}

	// Unknown stage: reset the session
	delete(a.sessions, sessionID)
	return reply(sessionID, stageAskName, "Let's restart. What's the name?"), nil
}

func reply(sessionID, stage, message string) *AssistantReply {
	return &AssistantReply{SessionID: sessionID, Stage: stage, AgentMessage: message}
}

func splitLabels(message string) []string {
	var labels []string
	for _, part := range strings.Split(message, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func summarizeState(state *assistantState) string {
	allergens := "None"
	if len(state.allergens) > 0 {
		allergens = strings.Join(state.allergens, ", ")
	}
	likes := "Not specified"
	if len(state.likes) > 0 {
		likes = strings.Join(state.likes, ", ")
	}
	return fmt.Sprintf("- Name: %s\n- Role: %s\n- Allergens: %s\n- Preferences: %s",
		state.name, state.role, allergens, likes)
}
