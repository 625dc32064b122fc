package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProbe struct {
	status StoreStatus
}

func (s stubProbe) Status() StoreStatus { return s.status }

func TestReportConnected(t *testing.T) {
	svc := NewService(Features{Weather: true}, stubProbe{status: StoreStatus{Backend: "postgres", Connected: true}})
	report := svc.Report(context.Background())
	require.Equal(t, StatusOK, report.Status)
	require.Equal(t, "postgres", report.Store.Backend)
	require.True(t, report.Features.Weather)
}

func TestReportDegraded(t *testing.T) {
	svc := NewService(Features{}, stubProbe{status: StoreStatus{Backend: "mongo"}})
	require.Equal(t, StatusDegraded, svc.Report(context.Background()).Status)

	svc = NewService(Features{}, nil)
	report := svc.Report(context.Background())
	require.Equal(t, StatusDegraded, report.Status)
	require.Equal(t, "unknown", report.Store.Backend)
}
