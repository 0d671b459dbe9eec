package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/models"
)

// --- mocks ---

type mockAnalysisService struct {
	analyzeFn    func(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error)
	analyzeCalls int
	refreshCalls int
}

func (m *mockAnalysisService) Analyze(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error) {
	m.analyzeCalls++
	return m.analyzeFn(ctx, userID, timeRange)
}

func (m *mockAnalysisService) Refresh(ctx context.Context, userID string, timeRange common.TimeRange) (*models.AnalysisResult, error) {
	m.refreshCalls++
	return m.analyzeFn(ctx, userID, timeRange)
}

type mockGeminiClient struct {
	narrativeFn    func(ctx context.Context, result *models.AnalysisResult) (string, error)
	narrativeCalls int
}

func (m *mockGeminiClient) GenerateContent(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (m *mockGeminiClient) GenerateFlowNarrative(ctx context.Context, result *models.AnalysisResult) (string, error) {
	m.narrativeCalls++
	return m.narrativeFn(ctx, result)
}

func (m *mockGeminiClient) Close() error { return nil }

// --- tests ---

func TestBuildReport_WithoutGemini(t *testing.T) {
	analysis := &mockAnalysisService{
		analyzeFn: func(_ context.Context, _ string, _ common.TimeRange) (*models.AnalysisResult, error) {
			return makeTestResult(), nil
		},
	}
	svc := NewService(analysis, nil, common.NewSilentLogger())

	doc, err := svc.BuildReport(context.Background(), "default", common.RangeToday)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	if analysis.analyzeCalls != 1 {
		t.Errorf("Analyze called %d times, want 1", analysis.analyzeCalls)
	}
	if !strings.Contains(doc, "# Options Flow Report") {
		t.Error("report missing title")
	}
	if strings.Contains(doc, "## Narrative") {
		t.Error("narrative section present without a gemini client")
	}
}

func TestBuildReport_AppendsNarrative(t *testing.T) {
	analysis := &mockAnalysisService{
		analyzeFn: func(_ context.Context, _ string, _ common.TimeRange) (*models.AnalysisResult, error) {
			return makeTestResult(), nil
		},
	}
	gemini := &mockGeminiClient{
		narrativeFn: func(_ context.Context, _ *models.AnalysisResult) (string, error) {
			return "Call buyers dominated large-cap tech today.", nil
		},
	}
	svc := NewService(analysis, gemini, common.NewSilentLogger())

	doc, err := svc.BuildReport(context.Background(), "default", common.RangeToday)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	if gemini.narrativeCalls != 1 {
		t.Errorf("GenerateFlowNarrative called %d times, want 1", gemini.narrativeCalls)
	}
	if !strings.Contains(doc, "## Narrative") {
		t.Error("narrative section missing")
	}
	if !strings.Contains(doc, "Call buyers dominated large-cap tech today.") {
		t.Error("narrative text missing")
	}
}

func TestBuildReport_NarrativeFailureDegrades(t *testing.T) {
	analysis := &mockAnalysisService{
		analyzeFn: func(_ context.Context, _ string, _ common.TimeRange) (*models.AnalysisResult, error) {
			return makeTestResult(), nil
		},
	}
	gemini := &mockGeminiClient{
		narrativeFn: func(_ context.Context, _ *models.AnalysisResult) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	svc := NewService(analysis, gemini, common.NewSilentLogger())

	doc, err := svc.BuildReport(context.Background(), "default", common.RangeToday)
	if err != nil {
		t.Fatalf("BuildReport failed: %v, want report without narrative", err)
	}
	if strings.Contains(doc, "## Narrative") {
		t.Error("narrative section present despite generation failure")
	}
}

func TestBuildReport_EmptyNarrativeOmitted(t *testing.T) {
	analysis := &mockAnalysisService{
		analyzeFn: func(_ context.Context, _ string, _ common.TimeRange) (*models.AnalysisResult, error) {
			return makeTestResult(), nil
		},
	}
	gemini := &mockGeminiClient{
		narrativeFn: func(_ context.Context, _ *models.AnalysisResult) (string, error) {
			return "", nil
		},
	}
	svc := NewService(analysis, gemini, common.NewSilentLogger())

	doc, err := svc.BuildReport(context.Background(), "default", common.RangeToday)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if strings.Contains(doc, "## Narrative") {
		t.Error("narrative section present for empty narrative")
	}
}

func TestBuildReport_AnalysisErrorPropagates(t *testing.T) {
	analysis := &mockAnalysisService{
		analyzeFn: func(_ context.Context, _ string, _ common.TimeRange) (*models.AnalysisResult, error) {
			return nil, errors.New("storage unavailable")
		},
	}
	svc := NewService(analysis, nil, common.NewSilentLogger())

	if _, err := svc.BuildReport(context.Background(), "default", common.RangeToday); err == nil {
		t.Fatal("expected error when analysis fails")
	}
}
