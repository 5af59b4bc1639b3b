package services

import (
	"strings"
	"testing"

	"github.com/crewdeck/backend/internal/models"
)

func TestReconcileInsertsNewCustomers(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	result, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", Phone: "555-1111", Email: "old@acme.test"},
		{Name: "Birch Homes", Phone: "555-2222"},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if result.Imported != 2 || result.Updated != 0 {
		t.Errorf("got imported=%d updated=%d, want 2/0", result.Imported, result.Updated)
	}
	if n := countCustomers(t, db); n != 2 {
		t.Errorf("customer count = %d, want 2", n)
	}
}

func TestReconcileUpdatesOnPhoneMatch(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	if _, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", Phone: "555-1111", Email: "old@acme.test"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders LLC", Phone: "555-1111", Email: "new@acme.test"},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if result.Imported != 0 || result.Updated != 1 {
		t.Errorf("got imported=%d updated=%d, want 0/1", result.Imported, result.Updated)
	}
	if n := countCustomers(t, db); n != 1 {
		t.Errorf("customer count = %d, want 1", n)
	}

	var customer models.Customer
	if err := db.Where("phone = ?", "555-1111").First(&customer).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if customer.Name != "Acme Builders LLC" {
		t.Errorf("name = %q, want %q", customer.Name, "Acme Builders LLC")
	}
	if customer.Email != "new@acme.test" {
		t.Errorf("email = %q, want %q", customer.Email, "new@acme.test")
	}
}

func TestReconcileOverwritesWithBlankFields(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	if _, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", FirstName: "Alice", LastName: "Mason", Phone: "555-1111", Email: "old@acme.test"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", Phone: "555-1111"},
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	var customer models.Customer
	if err := db.Where("phone = ?", "555-1111").First(&customer).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if customer.FirstName != "" || customer.LastName != "" || customer.Email != "" {
		t.Errorf("blank incoming fields should win, got first=%q last=%q email=%q",
			customer.FirstName, customer.LastName, customer.Email)
	}
}

func TestReconcileSkipsEmptyPhone(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	result, err := service.Reconcile([]CustomerRecord{
		{Name: "No Phone Co"},
		{Name: "Whitespace Co", Phone: "   "},
		{Name: "Real Co", Phone: "555-3333"},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if result.Imported != 1 || result.Updated != 0 {
		t.Errorf("got imported=%d updated=%d, want 1/0", result.Imported, result.Updated)
	}
	if n := countCustomers(t, db); n != 1 {
		t.Errorf("customer count = %d, want 1", n)
	}
}

func TestReconcileTrimsPhoneBeforeMatching(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	if _, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", Phone: "555-1111"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", Phone: "  555-1111  "},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if result.Imported != 0 || result.Updated != 1 {
		t.Errorf("got imported=%d updated=%d, want 0/1", result.Imported, result.Updated)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	batch := []CustomerRecord{
		{Name: "Acme Builders", FirstName: "Alice", LastName: "Mason", Phone: "555-1111", Email: "a@acme.test"},
		{Name: "Birch Homes", FirstName: "Bob", LastName: "Reed", Phone: "555-2222", Email: "b@birch.test"},
	}

	if _, err := service.Reconcile(batch); err != nil {
		t.Fatalf("first run: %v", err)
	}

	result, err := service.Reconcile(batch)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if result.Imported != 0 {
		t.Errorf("second run imported = %d, want 0", result.Imported)
	}
	if result.Updated != 2 {
		t.Errorf("second run updated = %d, want 2", result.Updated)
	}
	if n := countCustomers(t, db); n != 2 {
		t.Errorf("customer count = %d, want 2", n)
	}
}

func TestImportCSV(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	csv := strings.Join([]string{
		"Customer,First_Name,Last_Name,Phone,Main_Email",
		"Acme Builders,Alice,Mason,555-1111,a@acme.test",
		",Carol,Dunn,555-4444,c@dunn.test",
		"No Phone Co,,,,nobody@test",
	}, "\n")

	result, err := service.ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.Imported != 2 || result.Updated != 0 {
		t.Errorf("got imported=%d updated=%d, want 2/0", result.Imported, result.Updated)
	}

	var carol models.Customer
	if err := db.Where("phone = ?", "555-4444").First(&carol).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if carol.Name != "Carol Dunn" {
		t.Errorf("fallback name = %q, want %q", carol.Name, "Carol Dunn")
	}
}

func TestImportCSVMissingPhoneColumn(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	csv := "Customer,Main_Email\nAcme,a@acme.test\n"
	if _, err := service.ImportCSV(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for csv without Phone column")
	}
	if n := countCustomers(t, db); n != 0 {
		t.Errorf("customer count = %d, want 0", n)
	}
}

func TestSearchCustomers(t *testing.T) {
	db := newTestDB(t)
	service := NewCustomerService(db)

	if _, err := service.Reconcile([]CustomerRecord{
		{Name: "Acme Builders", LastName: "Mason", Phone: "555-1111", Email: "a@acme.test"},
		{Name: "Birch Homes", LastName: "Reed", Phone: "555-2222", Email: "b@birch.test"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	results, err := service.Search("Mason")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Acme Builders" {
		t.Errorf("search by last name returned %d results", len(results))
	}

	results, err = service.Search("555-2222")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Birch Homes" {
		t.Errorf("search by phone returned %d results", len(results))
	}

	results, err = service.Search("")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty query returned %d results, want 0", len(results))
	}
}
