package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gartstein/directory/internal/directory/auth"
	"github.com/gartstein/directory/internal/directory/controller"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/gartstein/directory/internal/directory/store"
	"github.com/gartstein/directory/internal/directory/validation"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

const testSecret = "gateway-secret"

// GatewayTestSuite drives the REST routes end to end against a real
// controller and store.
type GatewayTestSuite struct {
	suite.Suite
	server *httptest.Server
	store  *store.Store
	token  string
}

func (s *GatewayTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.store = store.NewStore(logger)
	v, err := validation.New(validation.DefaultRules(), models.DefaultCatalog(), nil)
	s.Require().NoError(err)
	service := controller.NewEmployeeService(s.store, v, logger, controller.WithPageSize(2))

	srv := NewServer(0, 0, logger)
	s.Require().NoError(srv.RegisterHTTPGateway(NewEmployeeHandler(service, logger), testSecret))
	s.server = httptest.NewServer(srv.httpServer.Handler)

	s.token, err = auth.GenerateToken("tester", testSecret, time.Hour)
	s.Require().NoError(err)
}

func (s *GatewayTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *GatewayTestSuite) do(method, path string, body any, authed bool) (*http.Response, []byte) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	s.Require().NoError(err)
	return resp, out.Bytes()
}

func (s *GatewayTestSuite) create(emp *rpc.Employee) rpc.Employee {
	resp, body := s.do(http.MethodPost, "/v1/employees", emp, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var out rpc.CreateEmployeeResponse
	s.Require().NoError(json.Unmarshal(body, &out))
	return *out.Employee
}

func (s *GatewayTestSuite) TestCreateRequiresToken() {
	resp, _ := s.do(http.MethodPost, "/v1/employees", wireEmployee(), false)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(0, s.store.Len())
}

func (s *GatewayTestSuite) TestCreateAndGet() {
	created := s.create(wireEmployee())
	s.Equal(int64(1), created.ID)

	resp, body := s.do(http.MethodGet, "/v1/employees/1", nil, false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/json", resp.Header.Get("Content-Type"))

	var got rpc.GetEmployeeResponse
	s.Require().NoError(json.Unmarshal(body, &got))
	s.Equal("john@example.com", got.Employee.Email)
	s.Equal("1990-03-15", got.Employee.DateOfBirth)
}

func (s *GatewayTestSuite) TestValidationBody() {
	s.create(wireEmployee())

	bad := wireEmployee()
	bad.FirstName = "J"
	resp, body := s.do(http.MethodPost, "/v1/employees", bad, true)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errBody struct {
		Code      int               `json:"code"`
		Fields    map[string]string `json:"fields"`
		Conflicts []string          `json:"conflicts"`
	}
	s.Require().NoError(json.Unmarshal(body, &errBody))
	s.Equal(map[string]string{"first_name": e.KeyFirstNameMinLength}, errBody.Fields)
	s.Equal([]string{e.KeyEmailExists}, errBody.Conflicts)
}

func (s *GatewayTestSuite) TestConflictOnlyIs409() {
	s.create(wireEmployee())

	dup := wireEmployee()
	dup.Email = "other@example.com"
	dup.DateOfBirth = ""
	resp, body := s.do(http.MethodPost, "/v1/employees", dup, true)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Contains(string(body), e.KeyNameExists)
	s.NotContains(string(body), e.KeyNameBirthdayExists)
}

func (s *GatewayTestSuite) TestUpdate() {
	created := s.create(wireEmployee())

	resp, body := s.do(http.MethodPatch, "/v1/employees/1", map[string]any{"phone": "555 999 0000"}, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	emp, ok := s.store.Get(created.ID)
	s.Require().True(ok)
	s.Equal("555 999 0000", emp.Phone)

	resp, _ = s.do(http.MethodPatch, "/v1/employees/99", map[string]any{"phone": "555 999 0000"}, true)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodPatch, "/v1/employees/abc", map[string]any{}, true)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *GatewayTestSuite) TestListPagination() {
	for i, name := range []string{"Ayşe", "Bora", "Cem"} {
		emp := wireEmployee()
		emp.FirstName = name
		emp.Email = fmt.Sprintf("user%d@example.com", i)
		s.create(emp)
	}

	resp, body := s.do(http.MethodGet, "/v1/employees?page=9&sort=first_name&order=desc", nil, false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list rpc.ListEmployeesResponse
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Equal(2, list.Page, "page is clamped")
	s.Equal(2, list.TotalPages)
	s.Require().Len(list.Employees, 1)
	s.Equal("Ayşe", list.Employees[0].FirstName)

	resp, body = s.do(http.MethodGet, "/v1/employees?q=%20AYSE%20", nil, false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Equal(1, list.Total)

	resp, _ = s.do(http.MethodGet, "/v1/employees?page=two", nil, false)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *GatewayTestSuite) TestValidateRoute() {
	created := s.create(wireEmployee())

	resp, body := s.do(http.MethodPost, "/v1/employees/validate", wireEmployee(), false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var check rpc.CheckEmployeeResponse
	s.Require().NoError(json.Unmarshal(body, &check))
	s.False(check.Valid)
	s.ElementsMatch([]string{e.KeyNameExists, e.KeyNameBirthdayExists, e.KeyEmailExists}, check.Conflicts)

	resp, body = s.do(http.MethodPost, "/v1/employees/validate?exclude_id=1", wireEmployee(), false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	check = rpc.CheckEmployeeResponse{}
	s.Require().NoError(json.Unmarshal(body, &check))
	s.True(check.Valid, "a record does not conflict with itself")
	s.Equal(int64(1), created.ID)
	s.Equal(1, s.store.Len(), "validate never writes")
}

func (s *GatewayTestSuite) TestDelete() {
	s.create(wireEmployee())
	other := wireEmployee()
	other.FirstName, other.Email = "Jane", "jane@example.com"
	s.create(other)

	resp, _ := s.do(http.MethodDelete, "/v1/employees/1", nil, true)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp, _ = s.do(http.MethodDelete, "/v1/employees/1", nil, true)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, body := s.do(http.MethodDelete, "/v1/employees", nil, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var out rpc.DeleteAllEmployeesResponse
	s.Require().NoError(json.Unmarshal(body, &out))
	s.Equal(1, out.Removed)
	s.Equal(0, s.store.Len())
}

func (s *GatewayTestSuite) TestCatalog() {
	resp, body := s.do(http.MethodGet, "/v1/catalog", nil, false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var catalog rpc.GetCatalogResponse
	s.Require().NoError(json.Unmarshal(body, &catalog))
	s.Equal(models.DefaultCatalog().Departments, catalog.Departments)
}

func (s *GatewayTestSuite) TestMalformedBody() {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/v1/employees", bytes.NewBufferString("{"))
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

func TestRegisterHTTPGateway(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50051, 8080, logger)

	err := s.RegisterHTTPGateway(NewEmployeeHandler(&mockEmployeeController{}, logger), "secret")
	require.NoError(t, err)

	require.NotNil(t, s.httpServer.Handler)
	require.Equal(t, s.httpEndpoint, s.httpServer.Addr)
}
