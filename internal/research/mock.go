package research

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ayush/research-intelligence/internal/models"
)

var mockReportTmpl = template.Must(template.New("report").Parse(`
<div class="prose max-w-none">
  <h2 class="text-2xl font-bold text-gray-900 mb-4">Research Report: {{.Query}}</h2>

  <div class="bg-blue-50 border-l-4 border-blue-400 p-4 mb-6">
    <p class="text-blue-800"><strong>Report sent to:</strong> {{.Email}}</p>
  </div>

  <h3 class="text-xl font-semibold text-gray-800 mb-3">Executive Summary</h3>
  <p class="text-gray-700 mb-4">This comprehensive analysis examines the topic "{{.Query}}" through multiple lenses, providing actionable insights and strategic recommendations.</p>

  <h3 class="text-xl font-semibold text-gray-800 mb-3">Key Findings</h3>
  <ul class="list-disc pl-6 text-gray-700 mb-4">
    <li>Market trends show significant growth potential in this area</li>
    <li>Current adoption rates indicate strong consumer interest</li>
    <li>Technology developments are accelerating implementation</li>
    <li>Regulatory environment remains favorable for expansion</li>
  </ul>

  <div class="bg-green-50 border border-green-200 rounded-lg p-4 mt-6">
    <h4 class="font-semibold text-green-800 mb-2">Recommendations</h4>
    <p class="text-green-700">Based on our analysis, we recommend focusing on emerging opportunities while maintaining awareness of potential challenges in the market.</p>
  </div>
</div>
`))

// RenderMockReport builds the placeholder report fragment for query and email.
// Both values are HTML-escaped.
func RenderMockReport(query, email string) string {
	var b strings.Builder
	// The template only reads two strings; Execute cannot fail on a Builder.
	_ = mockReportTmpl.Execute(&b, struct{ Query, Email string }{query, email})
	return b.String()
}

// MockService answers like the report service without any network access.
type MockService struct {
	delay time.Duration
}

func NewMockService(delay time.Duration) *MockService {
	return &MockService{delay: delay}
}

// GenerateReport waits for the configured delay and returns a canned report.
func (m *MockService) GenerateReport(ctx context.Context, req models.ResearchRequest) (*models.ResearchResponse, error) {
	if m.delay > 0 {
		t := time.NewTimer(m.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, &TransportError{Op: "mock", Err: ctx.Err()}
		}
	}
	return &models.ResearchResponse{
		Success:       true,
		Message:       fmt.Sprintf("Detailed report sent to %s", req.Email),
		ReportContent: RenderMockReport(req.Query, req.Email),
		Email:         req.Email,
	}, nil
}
