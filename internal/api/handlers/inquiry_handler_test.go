package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"greendrake/haven/internal/api/handlers"
	"greendrake/haven/internal/models"
)

func TestInquiryHandler_CreateInquiry_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockInquirySvc := new(MockInquiryService)
	mockTasks := new(MockAsynqClient)
	handler := handlers.NewInquiryHandler(mockInquirySvc, mockTasks)

	r := gin.New()
	r.POST("/inquiries", handler.CreateInquiry)

	propertyID := uuid.NewString()
	created := &models.Inquiry{ID: uuid.NewString(), Name: "Sam", Email: "sam@example.com", Message: "Still available?", PropertyID: propertyID}
	mockInquirySvc.On("Create", mock.Anything, "Sam", "sam@example.com", "Still available?", propertyID).Return(created, nil)
	mockTasks.On("EnqueueContext", mock.Anything, mock.AnythingOfType("*asynq.Task"), mock.Anything).
		Return(&asynq.TaskInfo{ID: "task-1"}, nil)

	body, _ := json.Marshal(map[string]string{
		"name":       "Sam",
		"email":      "sam@example.com",
		"message":    "Still available?",
		"propertyId": propertyID,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/inquiries", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Inquiry
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, respBody.ID)
	mockInquirySvc.AssertExpectations(t)
	mockTasks.AssertExpectations(t)
}

func TestInquiryHandler_CreateInquiry_PropertyMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockInquirySvc := new(MockInquiryService)
	handler := handlers.NewInquiryHandler(mockInquirySvc, new(MockAsynqClient))

	r := gin.New()
	r.POST("/inquiries", handler.CreateInquiry)

	propertyID := uuid.NewString()
	mockInquirySvc.On("Create", mock.Anything, "Sam", "sam@example.com", "Hi", propertyID).
		Return(nil, mongo.ErrNoDocuments)

	body, _ := json.Marshal(map[string]string{
		"name":       "Sam",
		"email":      "sam@example.com",
		"message":    "Hi",
		"propertyId": propertyID,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/inquiries", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockInquirySvc.AssertExpectations(t)
}

func TestInquiryHandler_CreateInquiry_ValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockInquirySvc := new(MockInquiryService)
	handler := handlers.NewInquiryHandler(mockInquirySvc, new(MockAsynqClient))

	r := gin.New()
	r.POST("/inquiries", handler.CreateInquiry)

	propertyID := uuid.NewString()
	mockInquirySvc.On("Create", mock.Anything, "", "sam@example.com", "Hi", propertyID).
		Return(nil, fmt.Errorf("inquiry requires a name"))

	body, _ := json.Marshal(map[string]string{
		"email":      "sam@example.com",
		"message":    "Hi",
		"propertyId": propertyID,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/inquiries", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Contains(t, respBody["error"], "name")
	mockInquirySvc.AssertExpectations(t)
}

func TestInquiryHandler_ListInquiries_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockInquirySvc := new(MockInquiryService)
	handler := handlers.NewInquiryHandler(mockInquirySvc, new(MockAsynqClient))

	r := gin.New()
	r.GET("/inquiries", handler.ListInquiries)

	expected := []models.Inquiry{
		{ID: uuid.NewString(), Name: "Sam"},
		{ID: uuid.NewString(), Name: "Alex"},
	}
	mockInquirySvc.On("List", mock.Anything).Return(expected, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/inquiries", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody []models.Inquiry
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Len(t, respBody, 2)
	mockInquirySvc.AssertExpectations(t)
}
