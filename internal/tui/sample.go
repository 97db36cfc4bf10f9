package tui

import "github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"

// The demo survey carries deliberate bias problems (leading q1, loaded q2,
// jargon q5) so the design agent has something to flag.
var sampleSurvey = core.Survey{
	ID:          "demo-survey-001",
	Title:       "Telemedicine Platform Experience Survey",
	Description: "Gather feedback on doctors' experience with our telehealth tools",
	Questions: []core.Question{
		{
			ID:       "q1",
			Text:     "How much do you love our new telemedicine platform?",
			Type:     core.QuestionLikert,
			Options:  []string{"1", "2", "3", "4", "5"},
			Required: true,
		},
		{
			ID:       "q2",
			Text:     "Don't you think video call quality has improved a lot?",
			Type:     core.QuestionBoolean,
			Required: true,
		},
		{
			ID:   "q3",
			Text: "What is your biggest pain point with the current telehealth workflow?",
			Type: core.QuestionText,
		},
		{
			ID:       "q4",
			Text:     "Do you prefer video or phone consultations and why?",
			Type:     core.QuestionMCQ,
			Options:  []string{"Video", "Phone"},
			Required: true,
		},
		{
			ID:       "q5",
			Text:     "What is your NPS for the telemedicine platform?",
			Type:     core.QuestionLikert,
			Options:  []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
			Required: true,
		},
	},
}

var sampleResponses = []core.Response{
	{
		ID:       "demo-resp-001",
		SurveyID: sampleSurvey.ID,
		DoctorID: "demo-doc-001",
		Answers: map[string]any{
			"q1": 3,
			"q2": true,
			"q3": "Patients often can't figure out how to join the video call. We need a simpler join link.",
			"q4": "Video",
			"q5": 6,
		},
		IsComplete:       true,
		DoctorSpecialty:  "Cardiology",
		TimeSpentSeconds: 145,
	},
	{
		ID:       "demo-resp-002",
		SurveyID: sampleSurvey.ID,
		DoctorID: "demo-doc-002",
		Answers: map[string]any{
			"q1": 4,
			"q2": false,
			"q3": "Documentation is still a nightmare after telemedicine visits. The EHR doesn't auto-populate.",
			"q4": "Phone",
			"q5": 5,
		},
		IsComplete:       true,
		DoctorSpecialty:  "Primary Care",
		TimeSpentSeconds: 198,
	},
	{
		ID:       "demo-resp-003",
		SurveyID: sampleSurvey.ID,
		DoctorID: "demo-doc-003",
		Answers: map[string]any{
			"q1": 2,
			"q2": false,
			"q3": "Technical issues during calls. Patients drop frequently. Need better mobile support.",
			"q4": "Phone",
			"q5": 3,
		},
		IsComplete:       true,
		DoctorSpecialty:  "Neurology",
		TimeSpentSeconds: 210,
	},
	{
		ID:       "demo-resp-004",
		SurveyID: sampleSurvey.ID,
		DoctorID: "demo-doc-004",
		Answers: map[string]any{
			"q1": 5,
			"q2": true,
			"q3": "Overall good experience. Would love better scheduling integration with calendar.",
			"q4": "Video",
			"q5": 8,
		},
		IsComplete:       true,
		DoctorSpecialty:  "Psychiatry",
		TimeSpentSeconds: 120,
	},
	{
		ID:       "demo-resp-005",
		SurveyID: sampleSurvey.ID,
		DoctorID: "demo-doc-005",
		Answers: map[string]any{
			"q1": 3,
			"q2": true,
			"q3": "Patient consent forms need to be digital and integrated. Too much paperwork still.",
			"q4": "Video",
			"q5": 7,
		},
		IsComplete:       true,
		DoctorSpecialty:  "Primary Care",
		TimeSpentSeconds: 167,
	},
}

var sampleDoctorContext = core.DoctorContext{
	Specialty:       "Cardiology",
	YearsExperience: 8,
}
