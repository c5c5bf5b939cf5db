package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitsettle/internal/config"
	"github.com/fkhayef/splitsettle/internal/database"
	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/planner"
	"github.com/fkhayef/splitsettle/internal/splitbill"
	mw "github.com/fkhayef/splitsettle/pkg/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	a, err := newApp(context.Background(), cfg, database.NewTestDB(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	srv := httptest.NewServer(a.router(mw.NewAuthenticator("")))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, user string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(mw.DevUserHeader, user)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServer_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, http.MethodPost, "/api/v1/groups", "alice", map[string]any{
		"name":       "Goa trip",
		"member_ids": []string{"bob", "carol"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	groupID := body["data"].(map[string]any)["id"].(string)

	status, body = call(t, srv, http.MethodPost, "/api/v1/split-bills", "alice", map[string]any{
		"group_id":           groupID,
		"description":        "Dinner",
		"total_amount_minor": 300,
		"split_type":         "EVEN",
		"participants":       []map[string]any{{"user_id": "alice"}, {"user_id": "bob"}, {"user_id": "carol"}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	billID := body["data"].(map[string]any)["id"].(string)

	status, body = call(t, srv, http.MethodPost, "/api/v1/split-bills/"+billID+"/participants/bob/paid", "bob", map[string]any{"method": "cash"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = call(t, srv, http.MethodGet, "/api/v1/groups/"+groupID+"/settlement", "alice", nil)
	require.Equal(t, http.StatusOK, status, body)
	settlement := body["settlement"].([]any)
	require.Len(t, settlement, 1)
	assert.Equal(t, "carol", settlement[0].(map[string]any)["from"])

	status, body = call(t, srv, http.MethodGet, "/api/v1/split-bills/"+billID+"/activity", "alice", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["data"].([]any), 1)

	status, body = call(t, srv, http.MethodGet, "/api/v1/users/me", "carol", nil)
	require.Equal(t, http.StatusOK, status, body)
	me := body["data"].(map[string]any)
	assert.Equal(t, float64(100), me["owes"])
	assert.Equal(t, "-1.00", me["net_display"])

	status, _ = call(t, srv, http.MethodGet, "/api/v1/groups/"+groupID+"/settlement", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "go_goroutines"))
}

func TestVerifyPlan(t *testing.T) {
	balances := ledger.Balances{"alice": 100, "bob": -100}

	assert.NoError(t, verifyPlan(balances, []planner.Transaction{{From: "bob", To: "alice", Amount: 100}}))
	assert.ErrorIs(t, verifyPlan(balances, []planner.Transaction{{From: "bob", To: "alice", Amount: 40}}), ledger.ErrLedgerInconsistency)
}

func TestPlanCmd_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "balances.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"alice": 200, "bob": -100, "carol": -100}`), 0o600))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"plan", "--file", path, "--verify"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "bob -> alice  1.00")
	assert.Contains(t, out.String(), "carol -> alice  1.00")
	assert.Contains(t, out.String(), "verified")
}

func TestPlanCmd_RejectsInconsistentFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "balances.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"alice": 200, "bob": -100}`), 0o600))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"plan", "--file", path})
	assert.ErrorIs(t, root.Execute(), ledger.ErrLedgerInconsistency)
}

func TestGroupPlan_PlansLoadedBalances(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "splitsettle.db")

	db, err := openDatabase(ctx, cfg, true)
	require.NoError(t, err)
	a, err := newApp(ctx, cfg, db)
	require.NoError(t, err)

	g, _, err := a.groups.Create(ctx, "alice", &group.CreateGroupRequest{Name: "Flat", MemberIDs: []string{"bob", "carol"}})
	require.NoError(t, err)
	total := int64(300)
	_, err = a.bills.Create(ctx, "alice", &splitbill.CreateSplitBillRequest{
		GroupID:          g.ID,
		Description:      "Dinner",
		TotalAmountMinor: &total,
		SplitType:        "EVEN",
		Participants:     []*splitbill.ParticipantInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "carol"}},
	})
	require.NoError(t, err)
	a.Close()
	require.NoError(t, db.Close())

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	balances, plan, err := groupPlan(cmd, cfg, g.ID)
	require.NoError(t, err)

	assert.Equal(t, ledger.Balances{"alice": 200, "bob": -100, "carol": -100}, balances)
	assert.Equal(t, []planner.Transaction{
		{From: "bob", To: "alice", Amount: 100},
		{From: "carol", To: "alice", Amount: 100},
	}, plan)
	assert.NoError(t, verifyPlan(balances, plan))
}
