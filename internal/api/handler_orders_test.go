package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupValidationRouter() *gin.Engine {
	r := gin.Default()
	handler := NewHandler(nil, nil, []string{"Jasot", "MG"}, nil, nil)
	r.POST("/api/orders", handler.CreateOrder)
	r.POST("/api/movements", handler.CreateMovement)
	r.PUT("/api/machines/:name", handler.PutMachineStatus)
	return r
}

func TestCreateOrder_RejectsMalformedBody(t *testing.T) {
	router := setupValidationRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/orders", bytes.NewBufferString(`{"product":"Hinge"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_RejectsEmptyBOM(t *testing.T) {
	router := setupValidationRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/orders", bytes.NewBufferString(`{"product":"Hinge","qtd":5,"bom":[]}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMovement_RejectsZeroQty(t *testing.T) {
	router := setupValidationRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/movements", bytes.NewBufferString(`{"sku":"P1","qty":0}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"qty must be non-zero"}`, w.Body.String())
}

func TestPutMachineStatus_UnknownMachine(t *testing.T) {
	router := setupValidationRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/machines/Ghost", bytes.NewBufferString(`{"status":"Setup"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"unknown machine"}`, w.Body.String())
}

func TestPutMachineStatus_InvalidStatus(t *testing.T) {
	router := setupValidationRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/machines/Jasot", bytes.NewBufferString(`{"status":"Exploded"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid status"}`, w.Body.String())
}
