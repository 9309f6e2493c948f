package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/maintenance"
	"github.com/parkrow/propertyops/internal/middleware"
	"github.com/parkrow/propertyops/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type maintenanceHandlerFixture struct {
	handler    *MaintenanceHandler
	requests   *MockMaintenanceCollection
	users      *MockUserCollection
	properties *MockPropertyCollection
}

func newMaintenanceHandlerFixture() *maintenanceHandlerFixture {
	requests := new(MockMaintenanceCollection)
	users := new(MockUserCollection)
	properties := new(MockPropertyCollection)
	service := maintenance.NewService(requests, users, nil)
	return &maintenanceHandlerFixture{
		handler:    NewMaintenanceHandler(service, users, properties),
		requests:   requests,
		users:      users,
		properties: properties,
	}
}

// withClaims attaches authenticated claims the way the auth middleware does.
func withClaims(r *http.Request, user *models.User) *http.Request {
	claims := &models.Claims{UserID: user.ID.Hex(), Email: user.Email, Role: user.Role}
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, claims)
	return r.WithContext(ctx)
}

func (f *maintenanceHandlerFixture) stubCaller(user *models.User) {
	f.users.On("FindUserByID", mock.Anything, user.ID.Hex()).Return(user, nil)
}

func newManager() *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		Email:     "manager@parkrow.test",
		FirstName: "Mora",
		LastName:  "Ellis",
		Role:      models.RoleManager,
		IsActive:  true,
	}
}

func newTenant() *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		Email:     "tenant@parkrow.test",
		FirstName: "Theo",
		LastName:  "Ngata",
		Role:      models.RoleTenant,
		IsActive:  true,
	}
}

func TestList_FilteredDenormalizedPage(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	manager := newManager()
	f.stubCaller(manager)

	propertyID := primitive.NewObjectID()
	requester := models.User{
		ID:        primitive.NewObjectID(),
		Email:     "tenant@parkrow.test",
		FirstName: "Theo",
		LastName:  "Ngata",
		Role:      models.RoleTenant,
		IsActive:  true,
	}
	// Two pending requests from the same requester: the join must dedupe the
	// id and still populate both rows.
	pageRequests := []models.MaintenanceRequest{
		{
			ID:          primitive.NewObjectID(),
			PropertyID:  propertyID,
			RequesterID: requester.ID,
			RequestType: models.RequestTypePlumbing,
			Priority:    models.PriorityHigh,
			Title:       "Kitchen sink leak",
			Status:      models.StatusPending,
			CreatedAt:   time.Now(),
		},
		{
			ID:          primitive.NewObjectID(),
			PropertyID:  propertyID,
			RequesterID: requester.ID,
			RequestType: models.RequestTypeHVAC,
			Priority:    models.PriorityMedium,
			Title:       "AC not cooling",
			Status:      models.StatusPending,
			CreatedAt:   time.Now(),
		},
	}

	status := models.StatusPending
	expectedFilter := db.RequestFilter{PropertyID: &propertyID, Status: &status}
	f.requests.On("ListRequests", mock.Anything, expectedFilter, "", 25).
		Return(&db.RequestPage{Requests: pageRequests, IsDone: true}, nil)
	f.users.On("FindUsersByIDs", mock.Anything, mock.MatchedBy(func(ids []primitive.ObjectID) bool {
		return len(ids) == 1 && ids[0] == requester.ID
	})).Return([]models.User{requester}, nil)

	req := httptest.NewRequest("GET", "/api/maintenance/requests?property_id="+propertyID.Hex()+"&status=pending", nil)
	w := httptest.NewRecorder()
	f.handler.List(w, withClaims(req, manager))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsDone)
	assert.Len(t, resp.Page, 2)
	for _, view := range resp.Page {
		assert.Equal(t, propertyID, view.PropertyID)
		assert.Equal(t, models.StatusPending, view.Status)
		assert.Equal(t, "Theo Ngata", view.RequesterName)
		assert.Equal(t, "tenant@parkrow.test", view.RequesterEmail)
	}
	f.requests.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func TestList_SearchFiltersOnlyCurrentPage(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	manager := newManager()
	f.stubCaller(manager)

	requester := newTenant()
	pageRequests := []models.MaintenanceRequest{
		{
			ID:          primitive.NewObjectID(),
			PropertyID:  primitive.NewObjectID(),
			RequesterID: requester.ID,
			Title:       "Water leak under sink",
			Status:      models.StatusPending,
		},
		{
			ID:          primitive.NewObjectID(),
			PropertyID:  primitive.NewObjectID(),
			RequesterID: requester.ID,
			Title:       "Broken door latch",
			Status:      models.StatusPending,
		},
	}
	f.requests.On("ListRequests", mock.Anything, db.RequestFilter{}, "", 25).
		Return(&db.RequestPage{Requests: pageRequests, IsDone: false, ContinueCursor: "next-page"}, nil)
	f.users.On("FindUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{*requester}, nil)

	req := httptest.NewRequest("GET", "/api/maintenance/requests?search=leak", nil)
	w := httptest.NewRecorder()
	f.handler.List(w, withClaims(req, manager))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// The search narrowed this page, but pagination state is untouched:
	// later pages may hold more matches.
	assert.Len(t, resp.Page, 1)
	assert.Equal(t, "Water leak under sink", resp.Page[0].Title)
	assert.False(t, resp.IsDone)
	assert.Equal(t, "next-page", resp.ContinueCursor)
}

func TestList_TenantForbidden(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	tenant := newTenant()
	f.stubCaller(tenant)

	req := httptest.NewRequest("GET", "/api/maintenance/requests", nil)
	w := httptest.NewRecorder()
	f.handler.List(w, withClaims(req, tenant))

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.requests.AssertNotCalled(t, "ListRequests", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList_InvalidQueryRejectedBeforeAuth(t *testing.T) {
	f := newMaintenanceHandlerFixture()

	// No claims on the request: validation must still win and return 400.
	req := httptest.NewRequest("GET", "/api/maintenance/requests?status=bogus", nil)
	w := httptest.NewRecorder()
	f.handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.users.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
}

func TestList_InvalidLimit(t *testing.T) {
	f := newMaintenanceHandlerFixture()

	for _, limit := range []string{"0", "101", "abc"} {
		req := httptest.NewRequest("GET", "/api/maintenance/requests?limit="+limit, nil)
		w := httptest.NewRecorder()
		f.handler.List(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestMyRequests_ScopedToCaller(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	tenant := newTenant()
	f.stubCaller(tenant)

	f.requests.On("ListRequests", mock.Anything, mock.MatchedBy(func(filter db.RequestFilter) bool {
		return filter.RequesterID != nil && *filter.RequesterID == tenant.ID
	}), "", 25).Return(&db.RequestPage{Requests: []models.MaintenanceRequest{}, IsDone: true}, nil)

	req := httptest.NewRequest("GET", "/api/maintenance/requests/mine", nil)
	w := httptest.NewRecorder()
	f.handler.MyRequests(w, withClaims(req, tenant))

	assert.Equal(t, http.StatusOK, w.Code)
	f.requests.AssertExpectations(t)
}

func TestCreate_TenantOpensPendingRequest(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	tenant := newTenant()
	f.stubCaller(tenant)

	propertyID := primitive.NewObjectID()
	f.properties.On("FindPropertyByID", mock.Anything, propertyID.Hex()).
		Return(&models.Property{ID: propertyID, Name: "Parkrow Commons"}, nil)
	f.requests.On("InsertRequest", mock.Anything, mock.MatchedBy(func(r models.MaintenanceRequest) bool {
		return r.Status == models.StatusPending && r.RequesterID == tenant.ID
	})).Return(primitive.NewObjectID(), nil)
	f.requests.On("InsertUpdate", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"property_id":  propertyID.Hex(),
		"request_type": "plumbing",
		"priority":     "high",
		"title":        "Kitchen sink leak",
		"description":  "Leaking at the trap",
	})
	req := httptest.NewRequest("POST", "/api/maintenance/requests", bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.Create(w, withClaims(req, tenant))

	assert.Equal(t, http.StatusCreated, w.Code)
	var created models.MaintenanceRequest
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, tenant.ID, created.RequesterID)
	f.requests.AssertExpectations(t)
}

func TestCreate_UnknownPropertyRejected(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	tenant := newTenant()
	f.stubCaller(tenant)

	propertyID := primitive.NewObjectID()
	f.properties.On("FindPropertyByID", mock.Anything, propertyID.Hex()).Return(nil, db.ErrNotFound)

	body, _ := json.Marshal(map[string]interface{}{
		"property_id":  propertyID.Hex(),
		"request_type": "general",
		"priority":     "low",
		"title":        "Hallway light out",
	})
	req := httptest.NewRequest("POST", "/api/maintenance/requests", bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.Create(w, withClaims(req, tenant))

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.requests.AssertNotCalled(t, "InsertRequest", mock.Anything, mock.Anything)
}

func TestGet_TenantCannotReadOthersRequest(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	tenant := newTenant()
	f.stubCaller(tenant)

	other := primitive.NewObjectID()
	request := &models.MaintenanceRequest{
		ID:          primitive.NewObjectID(),
		PropertyID:  primitive.NewObjectID(),
		RequesterID: other,
		Status:      models.StatusPending,
	}
	f.requests.On("FindRequestByID", mock.Anything, request.ID.Hex()).Return(request, nil)

	req := httptest.NewRequest("GET", "/api/maintenance/requests/"+request.ID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": request.ID.Hex()})
	w := httptest.NewRecorder()
	f.handler.Get(w, withClaims(req, tenant))

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.requests.AssertNotCalled(t, "ListUpdates", mock.Anything, mock.Anything)
}

func TestAssign_NonTechnicianRejected(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	manager := newManager()
	f.stubCaller(manager)

	request := &models.MaintenanceRequest{
		ID:          primitive.NewObjectID(),
		PropertyID:  primitive.NewObjectID(),
		RequesterID: primitive.NewObjectID(),
		Status:      models.StatusPending,
	}
	vendor := &models.User{ID: primitive.NewObjectID(), Role: models.RoleVendor, IsActive: true}
	f.requests.On("FindRequestByID", mock.Anything, request.ID.Hex()).Return(request, nil)
	f.users.On("FindUserByID", mock.Anything, vendor.ID.Hex()).Return(vendor, nil)

	body, _ := json.Marshal(map[string]string{"technician_id": vendor.ID.Hex()})
	req := httptest.NewRequest("POST", "/api/maintenance/requests/"+request.ID.Hex()+"/assign", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": request.ID.Hex()})
	w := httptest.NewRecorder()
	f.handler.Assign(w, withClaims(req, manager))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.requests.AssertNotCalled(t, "PatchRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_InvalidTransitionConflicts(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	manager := newManager()
	f.stubCaller(manager)

	request := &models.MaintenanceRequest{
		ID:          primitive.NewObjectID(),
		PropertyID:  primitive.NewObjectID(),
		RequesterID: primitive.NewObjectID(),
		Status:      models.StatusCompleted,
	}
	f.requests.On("FindRequestByID", mock.Anything, request.ID.Hex()).Return(request, nil)

	body, _ := json.Marshal(map[string]string{"status": "in_progress"})
	req := httptest.NewRequest("POST", "/api/maintenance/requests/"+request.ID.Hex()+"/status", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": request.ID.Hex()})
	w := httptest.NewRecorder()
	f.handler.UpdateStatus(w, withClaims(req, manager))

	assert.Equal(t, http.StatusConflict, w.Code)
	f.requests.AssertNotCalled(t, "PatchRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkUpdateStatus_ReturnsPerIDResults(t *testing.T) {
	f := newMaintenanceHandlerFixture()
	manager := newManager()
	f.stubCaller(manager)

	good := &models.MaintenanceRequest{
		ID:          primitive.NewObjectID(),
		PropertyID:  primitive.NewObjectID(),
		RequesterID: primitive.NewObjectID(),
		Status:      models.StatusPending,
	}
	missing := primitive.NewObjectID()
	f.requests.On("FindRequestByID", mock.Anything, good.ID.Hex()).Return(good, nil)
	f.requests.On("FindRequestByID", mock.Anything, missing.Hex()).Return(nil, db.ErrNotFound)
	f.requests.On("PatchRequest", mock.Anything, good.ID.Hex(), mock.Anything).Return(nil)
	f.requests.On("InsertUpdate", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"request_ids": []string{good.ID.Hex(), missing.Hex()},
		"status":      "cancelled",
	})
	req := httptest.NewRequest("POST", "/api/maintenance/requests/bulk-status", bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.BulkUpdateStatus(w, withClaims(req, manager))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results []maintenance.BulkResult `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, good.ID.Hex(), resp.Results[0].ID)
	assert.True(t, resp.Results[0].OK)
	assert.Equal(t, missing.Hex(), resp.Results[1].ID)
	assert.False(t, resp.Results[1].OK)
	assert.NotEmpty(t, resp.Results[1].Error)
}

func TestUpdateCost_RequiresAtLeastOneField(t *testing.T) {
	f := newMaintenanceHandlerFixture()

	body, _ := json.Marshal(map[string]string{"note": "no cost fields"})
	req := httptest.NewRequest("POST", "/api/maintenance/requests/"+primitive.NewObjectID().Hex()+"/cost", bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.UpdateCost(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.users.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
}
