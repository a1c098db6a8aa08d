// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/scaper/cert-tracker/checker"
	"github.com/scaper/cert-tracker/models"
	"github.com/scaper/cert-tracker/notify"
	"github.com/scaper/cert-tracker/stream"
	"github.com/scaper/cert-tracker/testutil"
)

// TestConcurrentClientCreation hammers Create from many goroutines across
// two tenants and verifies no rows leak between them.
func TestConcurrentClientCreation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewClientHandler(db, cfg)

	tenantA, _ := testutil.CreateTestTenant(t, db, cfg, "conc-a")
	tenantB, _ := testutil.CreateTestTenant(t, db, cfg, "conc-b")

	const perTenant = 20

	var wg sync.WaitGroup
	var created atomic.Int32

	spawn := func(tenant models.Tenant, label string) {
		for i := 0; i < perTenant; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()

				req := testutil.MakeRequest("POST", "/clients", models.CreateClientRequest{
					Name: fmt.Sprintf("%s-client-%d", label, n),
				}, nil)
				w := httptest.NewRecorder()

				handler.Create(w, asTenant(req, tenant))

				if w.Code == 201 {
					created.Add(1)
				}
			}(i)
		}
	}

	spawn(tenantA, "a")
	spawn(tenantB, "b")
	wg.Wait()

	if got := created.Load(); got != 2*perTenant {
		t.Errorf("Expected %d creations, got %d", 2*perTenant, got)
	}

	for _, tenant := range []models.Tenant{tenantA, tenantB} {
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM client WHERE tenant_id = $1`, tenant.ID).Scan(&count); err != nil {
			t.Fatalf("Failed to count clients: %v", err)
		}
		if count != perTenant {
			t.Errorf("Tenant %s: expected %d clients, got %d", tenant.Name, perTenant, count)
		}
	}
}

// TestConcurrentCertificateCreation verifies the (tenant, domain, port)
// uniqueness holds when the same endpoint is created concurrently.
func TestConcurrentCertificateCreation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	svc := checker.NewService(db, cfg, stream.NewHub(), notify.NewNotifier(db, cfg))
	handler := NewCertificateHandler(db, cfg, svc)

	tenant, _ := testutil.CreateTestTenant(t, db, cfg, "conc-cert")

	const attempts = 10

	var wg sync.WaitGroup
	var created, conflicted atomic.Int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/certificates", models.CreateCertificateRequest{
				Domain: "race.example.com",
				Port:   443,
			}, nil)
			w := httptest.NewRecorder()

			handler.Create(w, asTenant(req, tenant))

			switch w.Code {
			case 201:
				created.Add(1)
			case 409:
				conflicted.Add(1)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 successful creation, got %d", created.Load())
	}
	if created.Load()+conflicted.Load() != attempts {
		t.Errorf("Expected %d total outcomes, got %d created + %d conflicted",
			attempts, created.Load(), conflicted.Load())
	}
}
