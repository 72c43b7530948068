package main

import "questionflow/internal/model"

// sampleQuestionnaire is a small branching questionnaire that mixes legacy
// score labels with canonical option records
func sampleQuestionnaire(hostID string) *model.Questionnaire {
	nodes := []model.Node{
		{
			ID:       "q-work",
			Type:     model.NodeTypeQuestion,
			Position: model.Position{X: 0, Y: 0},
			Data: model.QuestionNodeData{
				Question:     "Where do you usually work?",
				QuestionType: model.QuestionTypeRadio,
				IsRequired:   true,
				Options:      model.LabelOptions("Onsite (Score: 0.6)", "Remote (Score: 1)", "Hybrid (Score: 0.8)"),
			},
		},
		{
			ID:       "q-office",
			Type:     model.NodeTypeQuestion,
			Position: model.Position{X: -250, Y: 200},
			Data: model.QuestionNodeData{
				Question:     "Which office are you based in?",
				QuestionType: model.QuestionTypeTextInput,
				Options:      []model.LegacyOption{},
			},
		},
		{
			ID:       "q-tools",
			Type:     model.NodeTypeQuestion,
			Position: model.Position{X: 250, Y: 200},
			Data: model.QuestionNodeData{
				Question:     "Which tools do you use every day?",
				QuestionType: model.QuestionTypeCheckbox,
				Options:      model.LabelOptions("Chat", "Video calls", "Shared documents"),
				OptionsData: []model.OptionRecord{
					{Text: "Chat", Score: "0.2"},
					{Text: "Video calls", Score: "0.5", AnnotationText: "ask about meeting load"},
					{Text: "Shared documents", Score: "0.3"},
				},
			},
		},
		{
			ID:       "q-commute",
			Type:     model.NodeTypeQuestion,
			Position: model.Position{X: -250, Y: 400},
			Data: model.QuestionNodeData{
				Question:     "Do you commute more than 30 minutes?",
				QuestionType: model.QuestionTypeYesNo,
				Options:      []model.LegacyOption{},
			},
		},
		{
			ID:       "q-wishes",
			Type:     model.NodeTypeQuestion,
			Position: model.Position{X: 0, Y: 600},
			Data: model.QuestionNodeData{
				Question:     "What would make your work week better?",
				QuestionType: model.QuestionTypeTextInput,
				Options:      []model.LegacyOption{},
			},
		},
	}

	edges := []model.Edge{
		{ID: "e-onsite", Source: "q-work", SourceHandle: model.OptionHandle(0), Target: "q-office", Label: "Onsite (Score: 0.6)"},
		{ID: "e-remote", Source: "q-work", SourceHandle: model.OptionHandle(1), Target: "q-tools", Label: "Remote (Score: 1)"},
		{ID: "e-hybrid", Source: "q-work", SourceHandle: model.OptionHandle(2), Target: "q-tools", Label: "Hybrid (Score: 0.8)"},
		{ID: "e-office", Source: "q-office", SourceHandle: model.HandleTextOutput, Target: "q-commute"},
		{ID: "e-tools", Source: "q-tools", SourceHandle: model.HandleAllSelected, Target: "q-wishes", Label: "All Selected"},
		{ID: "e-yes", Source: "q-commute", SourceHandle: model.HandleYes, Target: "q-wishes", Label: "Yes"},
		{ID: "e-no", Source: "q-commute", SourceHandle: model.HandleNo, Target: "q-wishes", Label: "No"},
	}

	return &model.Questionnaire{
		HostID:      hostID,
		Title:       "Ways of working",
		Description: "How and where the team works",
		Nodes:       nodes,
		Edges:       edges,
	}
}
