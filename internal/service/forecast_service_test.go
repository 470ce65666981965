package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saai/forecast-backend/internal/config"
	"github.com/saai/forecast-backend/internal/domain"
	"github.com/saai/forecast-backend/internal/forecast"
	"github.com/saai/forecast-backend/internal/metrics"
	"github.com/saai/forecast-backend/internal/storage"
)

var testForecastConfig = config.ForecastConfig{
	LookbackDays:       90,
	MinTrainingRecords: 30,
	HorizonDays:        7,
	SeasonalPeriod:     7,
	ActivityWindowDays: 30,
	MinRecentSales:     5,
}

type fakeSales struct {
	records map[string][]domain.SalesRecord
	counts  map[string]int
	err     error
}

func (f *fakeSales) FetchSales(ctx context.Context, tenantID, productCode string, lookbackDays int) ([]domain.SalesRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[productCode], nil
}

func (f *fakeSales) CountRecentSales(ctx context.Context, tenantID string, windowDays int) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.counts, nil
}

type fakeProducts struct {
	products map[string]*domain.Product
}

func (f *fakeProducts) ListActive(ctx context.Context, tenantID string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProducts) Get(ctx context.Context, tenantID, code string) (*domain.Product, error) {
	return f.products[code], nil
}

type fakePredictions struct {
	stored map[string]domain.Prediction
}

func predictionKey(tenantID, productCode string, date time.Time) string {
	return fmt.Sprintf("%s/%s/%s", tenantID, productCode, date.Format("2006-01-02"))
}

func (f *fakePredictions) Upsert(ctx context.Context, p domain.Prediction) error {
	if f.stored == nil {
		f.stored = make(map[string]domain.Prediction)
	}
	f.stored[predictionKey(p.TenantID, p.ProductCode, p.ForecastDate)] = p
	return nil
}

func (f *fakePredictions) Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, error) {
	p, ok := f.stored[predictionKey(tenantID, productCode, date)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePredictions) ListLive(ctx context.Context, tenantID string, now time.Time, limit int) ([]domain.Prediction, error) {
	out := make([]domain.Prediction, 0, len(f.stored))
	for _, p := range f.stored {
		if p.TenantID == tenantID && p.Live(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeNotifications struct {
	inserted []domain.Notification
}

func (f *fakeNotifications) Insert(ctx context.Context, n domain.Notification) error {
	f.inserted = append(f.inserted, n)
	return nil
}

func (f *fakeNotifications) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.Notification, error) {
	return f.inserted, nil
}

type memCache struct {
	entries map[string]domain.Prediction
}

func (c *memCache) Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, bool, error) {
	p, ok := c.entries[predictionKey(tenantID, productCode, date)]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *memCache) Set(ctx context.Context, p domain.Prediction) error {
	if c.entries == nil {
		c.entries = make(map[string]domain.Prediction)
	}
	c.entries[predictionKey(p.TenantID, p.ProductCode, p.ForecastDate)] = p
	return nil
}

func (c *memCache) TTL() time.Duration { return 24 * time.Hour }

type memObjects struct {
	blobs map[string][]byte
	fail  bool
}

func (o *memObjects) GetObject(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok := o.blobs[key]
	return data, ok, nil
}

func (o *memObjects) PutObject(ctx context.Context, key string, data []byte) error {
	if o.fail {
		return errors.New("object store down")
	}
	if o.blobs == nil {
		o.blobs = make(map[string][]byte)
	}
	o.blobs[key] = data
	return nil
}

type recordingSink struct {
	published []domain.Alert
}

func (s *recordingSink) Publish(ctx context.Context, alert domain.Alert) error {
	s.published = append(s.published, alert)
	return nil
}

type serviceFixture struct {
	svc           *ForecastService
	sales         *fakeSales
	products      *fakeProducts
	predictions   *fakePredictions
	notifications *fakeNotifications
	cache         *memCache
	objects       *memObjects
	sink          *recordingSink
	now           time.Time
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		sales:         &fakeSales{records: map[string][]domain.SalesRecord{}},
		products:      &fakeProducts{products: map[string]*domain.Product{}},
		predictions:   &fakePredictions{},
		notifications: &fakeNotifications{},
		cache:         &memCache{},
		objects:       &memObjects{},
		sink:          &recordingSink{},
		now:           time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewForecastService(
		f.sales,
		f.products,
		f.predictions,
		f.notifications,
		f.cache,
		storage.NewModelStore(f.objects),
		f.sink,
		testForecastConfig,
	)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *serviceFixture) addHistory(code string, days, qty int) {
	records := make([]domain.SalesRecord, 0, days)
	for i := days; i >= 1; i-- {
		records = append(records, domain.SalesRecord{
			Date:        f.now.AddDate(0, 0, -i),
			Quantity:    qty,
			ProductCode: code,
		})
	}
	f.sales.records[code] = records
}

func (f *serviceFixture) addProduct(code string, stock int) {
	f.products.products[code] = &domain.Product{
		TenantID: "t1",
		Code:     code,
		Stock:    stock,
		Status:   "ACTIVE",
	}
}

func TestPredictNoHistory(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestPredictWeightedFallback(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 10, 3)
	f.addProduct("SKU-1", 100)

	p, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	assert.Equal(t, domain.MethodWeightedAverage, p.Method)
	assert.Equal(t, 3, p.DemandTomorrow)
	assert.Equal(t, 21, p.DemandNextWeek)
	assert.Equal(t, 100, p.StockSnapshot)

	// Both the cache and the durable store carry the result.
	assert.Len(t, f.cache.entries, 1)
	assert.Len(t, f.predictions.stored, 1)
	// Thin history never produces a seasonal model artifact.
	assert.Empty(t, f.objects.blobs)
}

func TestPredictSeasonal(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 35, 5)
	f.addProduct("SKU-1", 100)

	p, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	assert.Equal(t, domain.MethodSeasonal, p.Method)
	assert.Equal(t, forecast.SeasonalConfidence, p.Confidence)
	assert.Equal(t, 5, p.DemandTomorrow)
	assert.Equal(t, 35, p.DemandNextWeek)
	// The freshly trained model is persisted for the next run.
	assert.Len(t, f.objects.blobs, 1)
}

func TestPredictCacheHit(t *testing.T) {
	f := newFixture()
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	cached := domain.Prediction{
		TenantID:       "t1",
		ProductCode:    "SKU-1",
		ForecastDate:   today,
		DemandTomorrow: 9,
		DemandNextWeek: 42,
		Method:         domain.MethodSeasonal,
		Confidence:     forecast.SeasonalConfidence,
		ExpiresAt:      f.now.Add(12 * time.Hour),
	}
	require.NoError(t, f.cache.Set(context.Background(), cached))

	// No sales history is wired up, so anything past the cache would fail
	// with ErrNoHistory.
	p, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	assert.Equal(t, cached, *p)
	assert.Empty(t, f.predictions.stored)
}

func TestPredictRepeatCallsServeCache(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 10, 3)
	f.addProduct("SKU-1", 100)

	first, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	// New sales arriving inside the TTL do not invalidate the entry.
	f.addHistory("SKU-1", 10, 50)
	second, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	assert.Equal(t, *first, *second)
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, tenantID, productCode string, date time.Time) (*domain.Prediction, bool, error) {
	return nil, false, errors.New("redis down")
}

func (failingCache) Set(ctx context.Context, p domain.Prediction) error {
	return errors.New("redis down")
}

func (failingCache) TTL() time.Duration { return 24 * time.Hour }

func TestPredictCacheErrorIsNotAMiss(t *testing.T) {
	f := newFixture()
	f.svc.cache = failingCache{}
	f.addHistory("SKU-1", 10, 3)
	f.addProduct("SKU-1", 100)

	missesBefore := testutil.ToFloat64(metrics.CacheMisses)
	errorsBefore := testutil.ToFloat64(metrics.CacheErrors)

	p, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	// A broken cache degrades to a plain compute, counted as an error
	// rather than a miss.
	assert.Equal(t, domain.MethodWeightedAverage, p.Method)
	assert.Equal(t, missesBefore, testutil.ToFloat64(metrics.CacheMisses))
	assert.Equal(t, errorsBefore+1, testutil.ToFloat64(metrics.CacheErrors))
}

func TestPredictCriticalAlert(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 10, 3)
	f.addProduct("SKU-1", 0)

	_, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	require.Len(t, f.notifications.inserted, 1)
	assert.Equal(t, forecast.SeverityCritical, f.notifications.inserted[0].Severity)
	assert.Equal(t, domain.AlertLowStockTomorrow, f.notifications.inserted[0].Type)
	require.Len(t, f.sink.published, 1)
	assert.Equal(t, forecast.SeverityCritical, f.sink.published[0].Severity)
}

func TestPredictWarningNotPublished(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 10, 3)
	// Covers tomorrow (3) but not the week (21).
	f.addProduct("SKU-1", 10)

	_, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	require.Len(t, f.notifications.inserted, 1)
	assert.Equal(t, forecast.SeverityWarning, f.notifications.inserted[0].Severity)
	assert.Empty(t, f.sink.published)
}

func TestPredictHealthyStockNoAlert(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 10, 3)
	f.addProduct("SKU-1", 100)

	_, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	assert.Empty(t, f.notifications.inserted)
	assert.Empty(t, f.sink.published)
}

func TestPredictModelStoreDownFallsBack(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 35, 5)
	f.addProduct("SKU-1", 100)
	f.objects.fail = true

	p, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	// A model that cannot be persisted is not served; the run degrades to
	// the fallback method.
	assert.Equal(t, domain.MethodWeightedAverage, p.Method)
}

func TestPredictReusesStoredModel(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 35, 5)
	f.addProduct("SKU-1", 100)

	model := &forecast.HoltWinters{
		Alpha:    0.3,
		Beta:     0.05,
		Gamma:    0.1,
		Period:   7,
		Level:    8,
		Trend:    0,
		Seasonal: []float64{0, 0, 0, 0, 0, 0, 0},
	}
	blob, err := model.Marshal()
	require.NoError(t, err)
	require.NoError(t, storage.NewModelStore(f.objects).Save(context.Background(), "t1", "SKU-1", blob))

	p, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	// The stored artifact wins over retraining: level 8, flat trend and
	// seasonality.
	assert.Equal(t, domain.MethodSeasonal, p.Method)
	assert.Equal(t, 8, p.DemandTomorrow)
	assert.Equal(t, 56, p.DemandNextWeek)
}

func TestPredictCorruptModelRetrains(t *testing.T) {
	f := newFixture()
	f.addHistory("SKU-1", 35, 5)
	f.addProduct("SKU-1", 100)
	require.NoError(t, storage.NewModelStore(f.objects).Save(context.Background(), "t1", "SKU-1", []byte("garbage")))

	p, err := f.svc.Predict(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)

	assert.Equal(t, domain.MethodSeasonal, p.Method)
	assert.Equal(t, 5, p.DemandTomorrow)
}

func TestGetPredictionExpired(t *testing.T) {
	f := newFixture()
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.predictions.Upsert(context.Background(), domain.Prediction{
		TenantID:     "t1",
		ProductCode:  "SKU-1",
		ForecastDate: today,
		ExpiresAt:    f.now.Add(-time.Hour),
	}))

	p, err := f.svc.GetPrediction(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAlertPreview(t *testing.T) {
	f := newFixture()
	f.addProduct("SKU-1", 2)
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.predictions.Upsert(context.Background(), domain.Prediction{
		TenantID:       "t1",
		ProductCode:    "SKU-1",
		ForecastDate:   today,
		DemandTomorrow: 5,
		DemandNextWeek: 20,
		ExpiresAt:      f.now.Add(time.Hour),
	}))

	alert, err := f.svc.AlertPreview(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, forecast.SeverityCritical, alert.Severity)

	// Preview never writes anything.
	assert.Empty(t, f.notifications.inserted)
	assert.Empty(t, f.sink.published)
}

func TestAlertPreviewHealthy(t *testing.T) {
	f := newFixture()
	f.addProduct("SKU-1", 100)
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.predictions.Upsert(context.Background(), domain.Prediction{
		TenantID:       "t1",
		ProductCode:    "SKU-1",
		ForecastDate:   today,
		DemandTomorrow: 5,
		DemandNextWeek: 20,
		ExpiresAt:      f.now.Add(time.Hour),
	}))

	alert, err := f.svc.AlertPreview(context.Background(), "t1", "SKU-1")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, forecast.SeverityNone, alert.Severity)
}
