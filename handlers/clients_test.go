// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scaper/cert-tracker/middleware"
	"github.com/scaper/cert-tracker/models"
	"github.com/scaper/cert-tracker/testutil"
)

// asTenant injects the tenant the way middleware.WithTenant would
func asTenant(req *http.Request, tenant models.Tenant) *http.Request {
	return req.WithContext(middleware.ContextWithTenant(req.Context(), tenant))
}

func TestCreateClient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewClientHandler(db, cfg)

	tenant, _ := testutil.CreateTestTenant(t, db, cfg, "client-tenant")

	t.Run("successful creation", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/clients", models.CreateClientRequest{
			Name:    "Wayne Enterprises",
			Email:   "bruce@wayne.example",
			Company: "Wayne Enterprises Inc",
		}, nil)
		w := httptest.NewRecorder()

		handler.Create(w, asTenant(req, tenant))

		testutil.AssertStatus(t, w, 201)

		var resp models.Client
		testutil.AssertJSON(t, w, &resp)

		if resp.Name != "Wayne Enterprises" {
			t.Errorf("Expected name 'Wayne Enterprises', got '%s'", resp.Name)
		}
		if resp.TenantID != tenant.ID {
			t.Errorf("Expected tenant %s, got %s", tenant.ID, resp.TenantID)
		}
		if resp.Email == nil || *resp.Email != "bruce@wayne.example" {
			t.Error("Expected email to round-trip")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/clients", models.CreateClientRequest{}, nil)
		w := httptest.NewRecorder()

		handler.Create(w, asTenant(req, tenant))

		testutil.AssertStatus(t, w, 400)
	})

	t.Run("no tenant context", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/clients", models.CreateClientRequest{Name: "X"}, nil)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		testutil.AssertStatus(t, w, 401)
	})
}

func TestListClients(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewClientHandler(db, cfg)

	tenantA, _ := testutil.CreateTestTenant(t, db, cfg, "list-a")
	tenantB, _ := testutil.CreateTestTenant(t, db, cfg, "list-b")

	testutil.CreateTestClient(t, db, tenantA.ID, "A One")
	testutil.CreateTestClient(t, db, tenantA.ID, "A Two")
	testutil.CreateTestClient(t, db, tenantB.ID, "B One")

	req := testutil.MakeRequest("GET", "/clients", nil, nil)
	w := httptest.NewRecorder()

	handler.List(w, asTenant(req, tenantA))

	testutil.AssertStatus(t, w, 200)

	var resp models.ClientListResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Clients) != 2 {
		t.Errorf("Expected 2 clients for tenant A, got %d", len(resp.Clients))
	}
	for _, c := range resp.Clients {
		if c.TenantID != tenantA.ID {
			t.Errorf("Client %s leaked from another tenant", c.ID)
		}
	}
}

func TestGetClient_TenantIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewClientHandler(db, cfg)

	owner, _ := testutil.CreateTestTenant(t, db, cfg, "owner")
	other, _ := testutil.CreateTestTenant(t, db, cfg, "other")
	clientID := testutil.CreateTestClient(t, db, owner.ID, "Private Client")

	t.Run("owner sees the client", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/clients/"+clientID, nil, nil)
		req.SetPathValue("id", clientID)
		w := httptest.NewRecorder()

		handler.Get(w, asTenant(req, owner))

		testutil.AssertStatus(t, w, 200)
	})

	t.Run("foreign rows look like 404", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/clients/"+clientID, nil, nil)
		req.SetPathValue("id", clientID)
		w := httptest.NewRecorder()

		handler.Get(w, asTenant(req, other))

		testutil.AssertStatus(t, w, 404)
	})
}

func TestUpdateClient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewClientHandler(db, cfg)

	tenant, _ := testutil.CreateTestTenant(t, db, cfg, "update-tenant")
	clientID := testutil.CreateTestClient(t, db, tenant.ID, "Before")

	req := testutil.MakeRequest("PUT", "/clients/"+clientID, models.UpdateClientRequest{
		Name:  "After",
		Notes: "renamed",
	}, nil)
	req.SetPathValue("id", clientID)
	w := httptest.NewRecorder()

	handler.Update(w, asTenant(req, tenant))

	testutil.AssertStatus(t, w, 200)

	var resp models.Client
	testutil.AssertJSON(t, w, &resp)

	if resp.Name != "After" {
		t.Errorf("Expected name 'After', got '%s'", resp.Name)
	}
	if resp.Notes == nil || *resp.Notes != "renamed" {
		t.Error("Expected notes to be set")
	}
}

func TestDeleteClient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewClientHandler(db, cfg)

	tenant, _ := testutil.CreateTestTenant(t, db, cfg, "delete-tenant")
	clientID := testutil.CreateTestClient(t, db, tenant.ID, "Doomed")

	t.Run("delete succeeds", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/clients/"+clientID, nil, nil)
		req.SetPathValue("id", clientID)
		w := httptest.NewRecorder()

		handler.Delete(w, asTenant(req, tenant))

		testutil.AssertStatus(t, w, 204)
	})

	t.Run("second delete is 404", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/clients/"+clientID, nil, nil)
		req.SetPathValue("id", clientID)
		w := httptest.NewRecorder()

		handler.Delete(w, asTenant(req, tenant))

		testutil.AssertStatus(t, w, 404)
	})

	t.Run("linked jobs survive with client unset", func(t *testing.T) {
		linked := testutil.CreateTestClient(t, db, tenant.ID, "Linked")
		jobID := testutil.CreateTestJob(t, db, tenant.ID, "Job with client", models.JobStatusOpen)
		if _, err := db.Exec(`UPDATE job SET client_id = $1 WHERE id = $2`, linked, jobID); err != nil {
			t.Fatalf("Failed to link job: %v", err)
		}

		req := testutil.MakeRequest("DELETE", "/clients/"+linked, nil, nil)
		req.SetPathValue("id", linked)
		w := httptest.NewRecorder()
		handler.Delete(w, asTenant(req, tenant))
		testutil.AssertStatus(t, w, 204)

		var got *string
		if err := db.QueryRow(`SELECT client_id FROM job WHERE id = $1`, jobID).Scan(&got); err != nil {
			t.Fatalf("Failed to read job: %v", err)
		}
		if got != nil {
			t.Error("Expected job client_id to be NULL after client deletion")
		}
	})
}
