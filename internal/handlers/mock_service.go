package handlers

import (
	"context"
	"net/http"
	"time"

	"filadash"
	"filadash/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockAMS struct {
	refreshErr error
	loadErr    error
	unloadErr  error
	cancelErr  error
	status     service.AMSStatus
	history    []filadash.SensorSample
	historyErr error

	refreshCalls int
	loadCalls    int
	unloadCalls  int
	cancelCalls  int

	lastUnit, lastSlot int
	lastHistUnit       int
	lastHistFrom       time.Time
	lastHistTo         time.Time
}

func (m *mockAMS) Refresh(_ context.Context, unitID, slotIndex int) error {
	m.refreshCalls++
	m.lastUnit, m.lastSlot = unitID, slotIndex
	return m.refreshErr
}
func (m *mockAMS) Load(_ context.Context, unitID, slotIndex int) error {
	m.loadCalls++
	m.lastUnit, m.lastSlot = unitID, slotIndex
	return m.loadErr
}
func (m *mockAMS) Unload(_ context.Context) error {
	m.unloadCalls++
	return m.unloadErr
}
func (m *mockAMS) Cancel(_ context.Context) error {
	m.cancelCalls++
	return m.cancelErr
}
func (m *mockAMS) Status() service.AMSStatus { return m.status }
func (m *mockAMS) SensorHistory(_ context.Context, unitID int, from, to time.Time) ([]filadash.SensorSample, error) {
	m.lastHistUnit, m.lastHistFrom, m.lastHistTo = unitID, from, to
	return m.history, m.historyErr
}
func (m *mockAMS) Run(ctx context.Context) { <-ctx.Done() }

type mockArchive struct {
	createID  int
	createErr error
	getResp   filadash.PrintArchive
	getErr    error
	listResp  []filadash.PrintArchive
	listErr   error
	deleteErr error
	stats     filadash.PrintStats
	statsErr  error

	lastCreated  filadash.PrintArchive
	lastGetID    int
	lastDeleteID int
}

func (m *mockArchive) Create(_ context.Context, a filadash.PrintArchive) (int, error) {
	m.lastCreated = a
	return m.createID, m.createErr
}
func (m *mockArchive) Get(_ context.Context, id int) (filadash.PrintArchive, error) {
	m.lastGetID = id
	return m.getResp, m.getErr
}
func (m *mockArchive) List(_ context.Context) ([]filadash.PrintArchive, error) {
	return m.listResp, m.listErr
}
func (m *mockArchive) Delete(_ context.Context, id int) error {
	m.lastDeleteID = id
	return m.deleteErr
}
func (m *mockArchive) Stats(_ context.Context) (filadash.PrintStats, error) {
	return m.stats, m.statsErr
}

type mockEventLog struct {
	resp     []filadash.OpEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]filadash.OpEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockSettings struct {
	getResp filadash.Setting
	getErr  error
	all     []filadash.Setting
	allErr  error
	putErr  error

	lastPutKey   string
	lastPutValue string
}

func (m *mockSettings) Get(_ context.Context, key string) (filadash.Setting, error) {
	return m.getResp, m.getErr
}
func (m *mockSettings) GetAll(_ context.Context) ([]filadash.Setting, error) {
	return m.all, m.allErr
}
func (m *mockSettings) Put(_ context.Context, key, value string) error {
	m.lastPutKey, m.lastPutValue = key, value
	return m.putErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// authedService wraps mocks with an always-passing auth so protected
// routes can be exercised directly.
func authedService(s *service.Service) *service.Service {
	if s.Authorization == nil {
		s.Authorization = &mockAuth{parseID: 1}
	}
	return s
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
