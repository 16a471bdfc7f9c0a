package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/patho/patho/internal/domain/booking"
	"github.com/patho/patho/internal/domain/catalog"
	"github.com/patho/patho/internal/platform/realtime"
)

// ---------------------------------------------------------------------------
// catalogAdapter tests
// ---------------------------------------------------------------------------

type fakeLabRepo struct {
	labs map[uuid.UUID]*catalog.Lab
}

func (r *fakeLabRepo) Create(_ context.Context, l *catalog.Lab) error { return nil }
func (r *fakeLabRepo) Update(_ context.Context, l *catalog.Lab) error { return nil }
func (r *fakeLabRepo) Delete(_ context.Context, id uuid.UUID) error   { return nil }
func (r *fakeLabRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*catalog.Lab, int, error) {
	return nil, 0, nil
}
func (r *fakeLabRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Lab, error) {
	if l, ok := r.labs[id]; ok {
		return l, nil
	}
	return nil, catalog.ErrNotFound
}

type fakeTestRepo struct {
	tests map[uuid.UUID]*catalog.Test
}

func (r *fakeTestRepo) Create(_ context.Context, t *catalog.Test) error { return nil }
func (r *fakeTestRepo) Update(_ context.Context, t *catalog.Test) error { return nil }
func (r *fakeTestRepo) Delete(_ context.Context, id uuid.UUID) error    { return nil }
func (r *fakeTestRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*catalog.Test, int, error) {
	return nil, 0, nil
}
func (r *fakeTestRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Test, error) {
	if t, ok := r.tests[id]; ok {
		return t, nil
	}
	return nil, catalog.ErrNotFound
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ realtime.Event) error { return nil }

func newAdapter(labID, testID uuid.UUID) *catalogAdapter {
	labs := &fakeLabRepo{labs: map[uuid.UUID]*catalog.Lab{
		labID: {ID: labID, Name: "Apex Diagnostics"},
	}}
	tests := &fakeTestRepo{tests: map[uuid.UUID]*catalog.Test{
		testID: {ID: testID, Name: "Complete Blood Count", Price: 399, LabID: &labID},
	}}
	svc := catalog.NewService(labs, tests, nopPublisher{}, zerolog.Nop())
	return &catalogAdapter{svc: svc}
}

func TestCatalogAdapterResolvesTest(t *testing.T) {
	labID, testID := uuid.New(), uuid.New()
	adapter := newAdapter(labID, testID)

	info, err := adapter.TestInfo(context.Background(), testID)
	if err != nil {
		t.Fatalf("TestInfo: %v", err)
	}
	if info.Name != "Complete Blood Count" || info.Price != 399 {
		t.Errorf("unexpected test info: %+v", info)
	}
	if info.LabName != "Apex Diagnostics" {
		t.Errorf("lab name not resolved, got %q", info.LabName)
	}
	if info.LabID == nil || *info.LabID != labID {
		t.Errorf("lab id not carried over, got %v", info.LabID)
	}
}

func TestCatalogAdapterUnknownTest(t *testing.T) {
	adapter := newAdapter(uuid.New(), uuid.New())

	_, err := adapter.TestInfo(context.Background(), uuid.New())
	if !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("unknown test must map to the booking domain's not-found, got %v", err)
	}
}

func TestCatalogAdapterTestWithoutLab(t *testing.T) {
	testID := uuid.New()
	tests := &fakeTestRepo{tests: map[uuid.UUID]*catalog.Test{
		testID: {ID: testID, Name: "Lipid Profile", Price: 550},
	}}
	svc := catalog.NewService(&fakeLabRepo{}, tests, nopPublisher{}, zerolog.Nop())
	adapter := &catalogAdapter{svc: svc}

	info, err := adapter.TestInfo(context.Background(), testID)
	if err != nil {
		t.Fatalf("TestInfo: %v", err)
	}
	if info.LabID != nil || info.LabName != "" {
		t.Errorf("test without a lab must leave lab fields empty: %+v", info)
	}
}

// ---------------------------------------------------------------------------
// command wiring tests
// ---------------------------------------------------------------------------

func findCommand(t *testing.T, parent *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, sub := range parent.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	t.Fatalf("command %q not registered under %q", name, parent.Name())
	return nil
}

func TestMigrateCommandWiring(t *testing.T) {
	cmd := migrateCmd()
	if cmd.Use != "migrate" {
		t.Errorf("unexpected use: %q", cmd.Use)
	}

	for _, name := range []string{"up", "status"} {
		sub := findCommand(t, cmd, name)
		if sub.Flags().Lookup("dir") == nil {
			t.Errorf("%s must carry a --dir flag", name)
		}
	}
}

func TestAdminCommandWiring(t *testing.T) {
	cmd := adminCmd()

	grant := findCommand(t, cmd, "grant")
	flag := grant.Flags().Lookup("user")
	if flag == nil {
		t.Fatal("grant must carry a --user flag")
	}
}

func TestAdminGrantRejectsBadUUID(t *testing.T) {
	cmd := adminCmd()
	grant := findCommand(t, cmd, "grant")

	if err := grant.Flags().Set("user", "not-a-uuid"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := grant.RunE(grant, nil); err == nil {
		t.Fatal("expected error for malformed user id")
	}
}

func TestServeCommandWiring(t *testing.T) {
	cmd := serveCmd()
	if cmd.Use != "serve" {
		t.Errorf("unexpected use: %q", cmd.Use)
	}
	if cmd.RunE == nil {
		t.Error("serve must have a run function")
	}
}
