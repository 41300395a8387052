//go:build integration

package steps

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/importer/internal/integration/persistence/model"
)

var fixturePlaceholder = regexp.MustCompile(`{{(category|subcategory|source):([^}]+)}}`)

func (t *testContext) theAPIServerIsRunning() error {
	t.uri = startServer(t.cfg, t.db, t.redis)

	resp, err := t.client.Get(t.uri + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (t *testContext) iAmAuthenticatedAsANewUser() error {
	t.currentUserID = uuid.New()

	token, err := t.tokens.GenerateAccessToken(t.currentUserID, t.currentUserID.String()+"@example.com", 15*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to generate access token: %w", err)
	}
	t.accessToken = token
	return nil
}

func (t *testContext) aCategoryExists(name string) error {
	return t.createCategory(t.currentUserID, name, nil)
}

func (t *testContext) aCategoryOfTypeExists(name, categoryType string) error {
	return t.createCategory(t.currentUserID, name, &categoryType)
}

func (t *testContext) aCategoryExistsForAnotherUser(name string) error {
	return t.createCategory(uuid.New(), name, nil)
}

func (t *testContext) createCategory(userID uuid.UUID, name string, categoryType *string) error {
	now := time.Now().UTC()
	category := &model.CategoryModel{
		UserID:    userID,
		Name:      name,
		Type:      categoryType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.db.DbConn.Create(category).Error; err != nil {
		return err
	}
	t.fixtures["category:"+name] = category.ID
	return nil
}

func (t *testContext) aSubcategoryExistsUnder(name, categoryName string) error {
	categoryID, ok := t.fixtures["category:"+categoryName]
	if !ok {
		return fmt.Errorf("category '%s' was not created in this scenario", categoryName)
	}

	now := time.Now().UTC()
	subcategory := &model.SubcategoryModel{
		CategoryID: categoryID,
		UserID:     t.currentUserID,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.db.DbConn.Create(subcategory).Error; err != nil {
		return err
	}
	t.fixtures["subcategory:"+name] = subcategory.ID
	return nil
}

func (t *testContext) aSourceEntityExists(name string) error {
	now := time.Now().UTC()
	source := &model.SourceEntityModel{
		UserID:    t.currentUserID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.db.DbConn.Create(source).Error; err != nil {
		return err
	}
	t.fixtures["source:"+name] = source.ID
	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	t.accessToken = ""
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

func (t *testContext) theStatementFileContains(fileName string, content *godog.DocString) error {
	t.fileName = fileName
	t.fileContent = []byte(content.Content)
	return nil
}

func (t *testContext) iImportTheStatementWithConfiguration(configuration *godog.DocString) error {
	if t.fileContent == nil {
		return errors.New("no statement file was declared")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", t.fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(t.fileContent); err != nil {
		return err
	}
	if err := writer.WriteField("configuration", t.replacePlaceholders(configuration.Content)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return t.executeRequest(http.MethodPost, "/api/v1/imports", body.Bytes(), writer.FormDataContentType())
}

func (t *testContext) iImportTheStatementTimesWithConfiguration(times int, configuration *godog.DocString) error {
	for i := 0; i < times; i++ {
		if err := t.iImportTheStatementWithConfiguration(configuration); err != nil {
			return err
		}
		if t.response.status != http.StatusOK {
			return fmt.Errorf("import %d returned %d (body: %v)", i+1, t.response.status, t.response.body)
		}
	}
	return nil
}

func (t *testContext) theRateLimitWindowElapses() error {
	t.redis.FastForward(t.cfg.RateLimit.Window + time.Second)
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, t.replacePlaceholders(path), nil, "")
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, t.replacePlaceholders(path), payload, "application/json")
}

// replacePlaceholders substitutes {{user_id}}, {{last_id}}, {{transaction_id}}, {{batch_id}} and
// {{category:Name}}-style references to fixtures created in the scenario.
func (t *testContext) replacePlaceholders(content string) string {
	content = strings.ReplaceAll(content, "{{user_id}}", t.currentUserID.String())
	content = strings.ReplaceAll(content, "{{last_id}}", strconv.FormatInt(t.lastID, 10))
	content = strings.ReplaceAll(content, "{{transaction_id}}", strconv.FormatInt(t.lastID, 10))
	content = strings.ReplaceAll(content, "{{batch_id}}", t.lastBatchID)

	return fixturePlaceholder.ReplaceAllStringFunc(content, func(match string) string {
		parts := fixturePlaceholder.FindStringSubmatch(match)
		if id, ok := t.fixtures[parts[1]+":"+parts[2]]; ok {
			return strconv.FormatInt(id, 10)
		}
		return match
	})
}

func (t *testContext) executeRequest(method, path string, payload []byte, contentType string) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.uri+path, reader)
	if err != nil {
		return err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{status: resp.StatusCode}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
		return nil
	}
	t.response.body = responseBody

	// Capture identifiers for later placeholders
	if id, ok := responseBody["id"].(float64); ok {
		t.lastID = int64(id)
	}
	if batchID, ok := responseBody["batchId"].(string); ok {
		t.lastBatchID = batchID
	}

	return nil
}

func (t *testContext) jsonBody() (map[string]any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	body, ok := t.response.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}
	return body, nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	_, err := t.jsonBody()
	return err
}

func (t *testContext) theResponseShouldContain(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != t.replacePlaceholders(expectedValue) {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if getFieldValue(body, field) == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, quantity int) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	items, ok := getFieldValue(body, field).([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %v", field, body)
	}
	if len(items) != quantity {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, quantity, len(items))
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	return t.countRows(quantity, table, nil)
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(t.replacePlaceholders(content.Content)), &criteria); err != nil {
		return err
	}
	return t.countRows(quantity, table, criteria)
}

func (t *testContext) countRows(quantity int, table string, criteria map[string]any) error {
	entity, ok := t.db.GetModel(table)
	if !ok {
		return fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entity).Elem()
	entitySlicePtr := reflect.New(reflect.SliceOf(entityType))

	query := t.db.DbConn.Unscoped()
	for key, value := range criteria {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	result := query.Find(entitySlicePtr.Interface())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	count := entitySlicePtr.Elem().Len()
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

func getFieldValue(object map[string]any, dotSeparatedField string) any {
	var field any = object

	for _, currentField := range strings.Split(dotSeparatedField, ".") {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			arr, ok := field.([]any)
			if !ok || i >= len(arr) {
				return nil
			}
			field = arr[i]
			continue
		}

		m, ok := field.(map[string]any)
		if !ok {
			return nil
		}
		field = m[currentField]
	}

	return field
}
