package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/response"
)

// stubNotifier records deliveries and signals each one on a channel so tests
// can wait for the background hook.
type stubNotifier struct {
	created chan string
	updated chan string
	panics  bool
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{
		created: make(chan string, 4),
		updated: make(chan string, 4),
	}
}

func (n *stubNotifier) ProjectCreated(p *models.Project, c *models.Customer) {
	if n.panics {
		panic("notifier down")
	}
	n.created <- p.ID
}

func (n *stubNotifier) ProjectUpdated(p *models.Project, c *models.Customer) {
	if n.panics {
		panic("notifier down")
	}
	n.updated <- p.ID
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return ""
	}
}

func sampleRequest() *ProjectRequest {
	sqft := 2400
	return &ProjectRequest{
		CustomerName:  "Acme Builders",
		CustomerPhone: "555-1111",
		CustomerEmail: "acme@test",
		Date:          "2026-03-15",
		PO:            "PO-1001",
		Address:       "12 Elm St",
		City:          "Springfield",
		Subdivision:   "Oak Ridge",
		LotNumber:     "14B",
		SquareFootage: &sqft,
		JobCostType:   []string{"concrete"},
		WorkType:      []string{"flatwork", "footings"},
		Notes:         "gate code 4411",
	}
}

func TestCreateProject(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	resp, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.ID == "" {
		t.Error("expected a generated project id")
	}
	if resp.Region != "northern" {
		t.Errorf("region = %q, want northern", resp.Region)
	}
	if resp.Date != "2026-03-15" {
		t.Errorf("date = %q, want 2026-03-15", resp.Date)
	}
	if len(resp.JobCostType) != 1 || resp.JobCostType[0] != "concrete" {
		t.Errorf("job_cost_type = %v, want [concrete]", resp.JobCostType)
	}
	if len(resp.WorkType) != 2 {
		t.Errorf("work_type = %v, want two tags", resp.WorkType)
	}
	if resp.CustomerName != "Acme Builders" || resp.CustomerPhone != "555-1111" {
		t.Errorf("customer fields not flattened: %+v", resp)
	}

	if n := countCustomers(t, db); n != 1 {
		t.Errorf("customer count = %d, want 1", n)
	}
}

func TestCreateProjectInvalidDate(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	req := sampleRequest()
	req.Date = "03/15/2026"

	_, err := service.Create("northern", req)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
		t.Fatalf("expected 400 for bad date, got %v", err)
	}

	var count int64
	db.Model(&models.Project{}).Count(&count)
	if count != 0 {
		t.Errorf("project count = %d, want 0", count)
	}
}

func TestCreateProjectRejectsDelimiterInTag(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	req := sampleRequest()
	req.JobCostType = []string{"concrete,rebar"}

	_, err := service.Create("northern", req)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
		t.Fatalf("expected 400 for tag containing delimiter, got %v", err)
	}
}

func TestCreateProjectMissingPhone(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	req := sampleRequest()
	req.CustomerPhone = "   "

	_, err := service.Create("northern", req)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
		t.Fatalf("expected 400 for blank phone, got %v", err)
	}
}

func TestCreateProjectReusesCustomerByPhone(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db)
	service := NewProjectService(db, nil, nil)

	if _, err := customers.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", FirstName: "Alice", Phone: "555-1111", Email: "old@test"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := sampleRequest()
	req.CustomerEmail = "new@test"
	if _, err := service.Create("northern", req); err != nil {
		t.Fatalf("create: %v", err)
	}

	if n := countCustomers(t, db); n != 1 {
		t.Fatalf("customer count = %d, want 1", n)
	}

	var customer models.Customer
	if err := db.Where("phone = ?", "555-1111").First(&customer).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if customer.Email != "new@test" {
		t.Errorf("email = %q, want new@test", customer.Email)
	}
	if customer.FirstName != "Alice" {
		t.Errorf("directory fields should survive a project write, first = %q", customer.FirstName)
	}
}

func TestGetProjectIsRegionScoped(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	resp, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Get("northern", resp.ID); err != nil {
		t.Errorf("get in own region: %v", err)
	}

	_, err = service.Get("southern", resp.ID)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("expected 404 across regions, got %v", err)
	}
}

func TestListProjectsByRegion(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	if _, err := service.Create("northern", sampleRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}
	south := sampleRequest()
	south.CustomerPhone = "555-2222"
	south.Address = "9 Pine Rd"
	if _, err := service.Create("southern", south); err != nil {
		t.Fatalf("create: %v", err)
	}

	northern, err := service.List("northern")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(northern) != 1 || northern[0].Address != "12 Elm St" {
		t.Errorf("northern list = %d entries", len(northern))
	}

	empty, err := service.List("eastern")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown region should list empty, got %d", len(empty))
	}
}

func TestUpdateProjectReplacesFields(t *testing.T) {
	db := newTestDB(t)
	notifier := newStubNotifier()
	service := NewProjectService(db, notifier, nil)

	created, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	waitFor(t, notifier.created)

	req := sampleRequest()
	req.Date = "2026-04-01"
	req.Notes = ""
	req.WorkType = []string{"patio"}

	updated, err := service.Update("northern", created.ID, req)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Date != "2026-04-01" {
		t.Errorf("date = %q, want 2026-04-01", updated.Date)
	}
	if updated.Notes != "" {
		t.Errorf("notes should be replaced with empty, got %q", updated.Notes)
	}
	if len(updated.WorkType) != 1 || updated.WorkType[0] != "patio" {
		t.Errorf("work_type = %v, want [patio]", updated.WorkType)
	}

	if id := waitFor(t, notifier.updated); id != created.ID {
		t.Errorf("update notification for %q, want %q", id, created.ID)
	}
}

func TestUpdateProjectRewritesCustomerFields(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	created, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := sampleRequest()
	req.CustomerName = "Acme Builders LLC"
	req.CustomerEmail = "billing@acme.test"

	updated, err := service.Update("northern", created.ID, req)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CustomerName != "Acme Builders LLC" {
		t.Errorf("customer_name = %q", updated.CustomerName)
	}

	var customer models.Customer
	if err := db.Where("phone = ?", "555-1111").First(&customer).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if customer.Name != "Acme Builders LLC" || customer.Email != "billing@acme.test" {
		t.Errorf("customer row not rewritten: %+v", customer)
	}
	if n := countCustomers(t, db); n != 1 {
		t.Errorf("customer count = %d, want 1", n)
	}
}

func TestUpdateProjectWrongRegion(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	created, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = service.Update("southern", created.ID, sampleRequest())
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestDeleteProjectRemovesOrphanCustomer(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	created, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.Delete("northern", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if n := countCustomers(t, db); n != 0 {
		t.Errorf("orphaned customer should be deleted, count = %d", n)
	}

	_, err = service.Get("northern", created.ID)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("deleted project should 404, got %v", err)
	}
}

func TestDeleteProjectKeepsCustomerWithOtherProjects(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	first, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second := sampleRequest()
	second.Address = "9 Pine Rd"
	if _, err := service.Create("northern", second); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.Delete("northern", first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if n := countCustomers(t, db); n != 1 {
		t.Errorf("customer with remaining project should survive, count = %d", n)
	}
}

func TestNotifierPanicDoesNotFailWrite(t *testing.T) {
	db := newTestDB(t)
	notifier := newStubNotifier()
	notifier.panics = true
	service := NewProjectService(db, notifier, nil)

	created, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create should survive a broken notifier: %v", err)
	}

	// Give the hook a moment to run and recover.
	time.Sleep(100 * time.Millisecond)

	if _, err := service.Get("northern", created.ID); err != nil {
		t.Errorf("project should be persisted: %v", err)
	}
}

func TestCreateAppendsToExportFile(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	notifier := newStubNotifier()
	exporter := NewExportService(db, dir)
	service := NewProjectService(db, notifier, exporter)

	created, err := service.Create("northern", sampleRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	waitFor(t, notifier.created)

	data, err := os.ReadFile(filepath.Join(dir, "projects_northern.csv"))
	if err != nil {
		t.Fatalf("read export file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("export file has %d lines, want header + 1 row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Project ID,") {
		t.Errorf("first line should be the header, got %q", lines[0])
	}
	if !strings.Contains(lines[1], created.ID) {
		t.Errorf("row should carry the project id")
	}
}

func TestTransactionRollsBackOnCustomerError(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db, nil, nil)

	req := sampleRequest()
	req.CustomerPhone = ""
	if _, err := service.Create("northern", req); err == nil {
		t.Fatal("expected error")
	}

	var projects int64
	db.Model(&models.Project{}).Count(&projects)
	if projects != 0 || countCustomers(t, db) != 0 {
		t.Error("failed create must leave no rows behind")
	}
}

var _ Notifier = (*stubNotifier)(nil)
