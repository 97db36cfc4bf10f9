package core

import (
	"context"
	"time"
)

type SurveysRepository interface {
	Create(ctx context.Context, survey *Survey) error
	GetByID(ctx context.Context, id string) (*Survey, error)
	ListByAdmin(ctx context.Context, adminID string, status SurveyStatus) ([]Survey, error)
	Update(ctx context.Context, survey *Survey) error
	Delete(ctx context.Context, id string) error
	// ListStale returns active surveys launched before the cutoff, for the
	// periodic expiry sweep.
	ListStale(ctx context.Context, cutoff time.Time) ([]Survey, error)
}

type ResponsesRepository interface {
	Create(ctx context.Context, response *Response) error
	Update(ctx context.Context, response *Response) error
	GetByID(ctx context.Context, id string) (*Response, error)
	GetBySurveyAndDoctor(ctx context.Context, surveyID, doctorID string) (*Response, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]Response, error)
}

type InsightsRepository interface {
	Save(ctx context.Context, insight *StoredInsight) error
	GetBySurvey(ctx context.Context, surveyID string) (*StoredInsight, error)
}

type EventsRepository interface {
	Append(ctx context.Context, event SurveyEvent) error
	ListBySurvey(ctx context.Context, surveyID string) ([]SurveyEvent, error)
}
