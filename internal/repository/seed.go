package repository

import "virtual_classroom_backend/internal/model"

// SeedDemo loads the demo roster and courses used by the simulated live
// classroom. Real deployments replace this with a CMS import.
func SeedDemo(r *RosterRepository) {
	dwi := &model.Course{
		ID:             "course-dwi",
		Name:           "DWI Education Program",
		MakeupFeeCents: 7500,
		TermsVideoFile: "terms-orientation.mp4",
		Modules: []model.CourseModule{
			{
				ID:   "dwi-m1",
				Name: "Module 1: Alcohol and the Law",
				Items: []model.TimelineItem{
					{ID: "dwi-m1-i1", Type: model.ItemAIScript, Title: "Instructor welcome", DurationMinutes: 2},
					{ID: "dwi-m1-i2", Type: model.ItemContent, Title: "BAC limits and penalties", VideoFileName: "bac-limits.mp4"},
					{ID: "dwi-m1-i3", Type: model.ItemQuiz, Title: "Checkpoint quiz", Questions: []model.Question{
						{
							ID:   "q1",
							Text: "What BAC is the legal limit for drivers over 21?",
							Options: []model.Option{
								{ID: "q1a", Text: "0.05%"},
								{ID: "q1b", Text: "0.08%"},
								{ID: "q1c", Text: "0.10%"},
							},
							CorrectOptionID: "q1b",
						},
						{
							ID:   "q2",
							Text: "A DWI conviction stays on your record for how long?",
							Options: []model.Option{
								{ID: "q2a", Text: "1 year"},
								{ID: "q2b", Text: "5 years"},
								{ID: "q2c", Text: "It varies by state"},
							},
							CorrectOptionID: "q2c",
						},
					}},
					{ID: "dwi-m1-i4", Type: model.ItemBreak, Title: "Short break"},
				},
			},
			{
				ID:   "dwi-m2",
				Name: "Module 2: Risk and Responsibility",
				Items: []model.TimelineItem{
					{ID: "dwi-m2-i1", Type: model.ItemContent, Title: "Impairment in practice", FileName: "impairment.pdf", DurationMinutes: 3},
					{ID: "dwi-m2-i2", Type: model.ItemPoll, Title: "Self-assessment poll"},
					{ID: "dwi-m2-i3", Type: model.ItemGoogleForm, Title: "NDP screening form", GoogleFormURL: "https://forms.example.com/ndp"},
					{ID: "dwi-m2-i4", Type: model.ItemBreakout, Title: "Group discussion"},
				},
			},
		},
	}

	aepm := &model.Course{
		ID:             model.CourseAEPM,
		Name:           "AEPM Intervention Program",
		MakeupFeeCents: 9500,
		TermsVideoFile: "terms-orientation.mp4",
		Modules: []model.CourseModule{
			{
				ID:   "aepm-m1",
				Name: "Simulation",
				Items: []model.TimelineItem{
					{ID: "aepm-m1-i1", Type: model.ItemAIScript, Title: "Scenario setup", DurationMinutes: 1},
					{ID: "aepm-m1-i2", Type: model.ItemBreakout, Title: "Peer simulation round"},
				},
			},
		},
	}

	r.PutCourse(dwi)
	r.PutCourse(aepm)

	r.PutStudent(&model.Student{
		ID:        "stu-001",
		Name:      "Jordan Michaels",
		Email:     "jordan.michaels@example.com",
		ClassCode: "A83K-9B1P",
		Cohort:    "cohort-tue-am",
		CourseID:  dwi.ID,
		Status:    model.StatusInProgress,
	})
	r.PutStudent(&model.Student{
		ID:        "stu-002",
		Name:      "Casey Nguyen",
		Email:     "casey.nguyen@example.com",
		ClassCode: "B72M-4C8Q",
		Cohort:    "cohort-tue-am",
		CourseID:  dwi.ID,
		Status:    model.StatusInProgress,
	})
	r.PutStudent(&model.Student{
		ID:        "stu-003",
		Name:      "Sam Fail-Demo",
		Email:     "sam.demo@example.com",
		ClassCode: "C19X-7D2R",
		Cohort:    "cohort-tue-am",
		CourseID:  dwi.ID,
		Status:    model.StatusInProgress,
	})
	r.PutStudent(&model.Student{
		ID:        "stu-004",
		Name:      "Riley Okafor",
		Email:     "riley.okafor@example.com",
		ClassCode: "D44T-1E9S",
		Cohort:    "cohort-aepm",
		CourseID:  aepm.ID,
		Status:    model.StatusInProgress,
	})
	r.PutStudent(&model.Student{
		ID:        "stu-005",
		Name:      "Morgan Lee",
		Email:     "morgan.lee@example.com",
		ClassCode: "E58V-3F6U",
		Cohort:    "cohort-tue-am",
		CourseID:  dwi.ID,
		Status:    model.StatusMakeupRequired,
		MakeupSession: &model.MakeupSession{
			ModuleID:   "dwi-m2",
			ModuleName: "Module 2: Risk and Responsibility",
			FeeCents:   7500,
		},
	})
	r.PutStudent(&model.Student{
		ID:        "stu-006",
		Name:      "Alex Carter",
		Email:     "alex.carter@example.com",
		ClassCode: "F61W-5G3V",
		Cohort:    "cohort-tue-am",
		CourseID:  dwi.ID,
		Status:    model.StatusCompleted,
	})
}
