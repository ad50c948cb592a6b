package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/cache"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/core/services"
	"github.com/SscSPs/statement_importer/internal/fxfeed"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

type FxRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockFxRateRepository
	mockFeed     *MockRateFeed
	cache        *cache.InMemoryClient[domain.ResolvedRate]
	service      portssvc.FxRateSvcFacade
	ctx          context.Context
	date         time.Time
}

func (suite *FxRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockFxRateRepository)
	suite.mockFeed = new(MockRateFeed)
	suite.cache = cache.NewInMemoryClient[domain.ResolvedRate]()
	suite.ctx = context.Background()
	suite.date = day(2025, 1, 17)
	suite.service = services.NewFxRateService(suite.mockRateRepo,
		services.WithFxCache(suite.cache, time.Hour),
		services.WithRateFeed(suite.mockFeed))
}

func (suite *FxRateServiceTestSuite) TearDownTest() {
	suite.cache.Close()
}

func TestFxRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FxRateServiceTestSuite))
}

func storedRate(from, to, rate string, source domain.FxSource) *domain.FxRate {
	return &domain.FxRate{CurrencyFrom: from, CurrencyTo: to, Rate: decimal.RequireFromString(rate), RateDate: day(2025, 1, 17), Source: source}
}

func (suite *FxRateServiceTestSuite) notFound() error {
	return apperrors.NewNotFoundError("fx rate not found")
}

func (suite *FxRateServiceTestSuite) TestGetRate_SameCurrencyIsOne() {
	rate, err := suite.service.GetRate(suite.ctx, "eur", "EUR", time.Now())

	suite.Require().NoError(err)
	suite.True(rate.Rate.Equal(decimal.NewFromInt(1)))
	suite.Equal(domain.FxSourceIdentity, rate.Source)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRate")
}

func (suite *FxRateServiceTestSuite) TestGetRate_InvalidCode() {
	_, err := suite.service.GetRate(suite.ctx, "EURO", "USD", suite.date)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FxRateServiceTestSuite) TestGetRate_DirectThenCached() {
	// a later hour of the same day resolves to the same stored row
	at := suite.date.Add(15 * time.Hour)
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "EUR", suite.date).
		Return(storedRate("USD", "EUR", "0.92", domain.FxSourceECB), nil).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "EUR", "USD", suite.date).Return(nil, suite.notFound()).Once()

	first, err := suite.service.GetRate(suite.ctx, "USD", "EUR", at)
	suite.Require().NoError(err)
	second, err := suite.service.GetRate(suite.ctx, "USD", "EUR", suite.date)
	suite.Require().NoError(err)

	suite.True(first.Rate.Equal(decimal.RequireFromString("0.92")))
	suite.True(second.Rate.Equal(first.Rate))
	suite.Equal(first.Source, second.Source)
	suite.True(second.Date.Equal(first.Date))
	suite.False(first.Inverted)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestGetRate_InverseOfStoredRate() {
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "EUR", suite.date).Return(nil, suite.notFound()).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "EUR", "USD", suite.date).
		Return(storedRate("EUR", "USD", "1.25", domain.FxSourceManual), nil).Once()

	rate, err := suite.service.GetRate(suite.ctx, "USD", "EUR", suite.date)

	suite.Require().NoError(err)
	suite.True(rate.Inverted)
	suite.Equal(domain.FxSourceManual, rate.Source)
	suite.True(rate.Rate.Equal(decimal.RequireFromString("0.8")), rate.Rate.String())
}

func (suite *FxRateServiceTestSuite) TestGetRate_RemoteFetchStoresAndRequeries() {
	sheet := &fxfeed.RateSheet{
		Date: suite.date,
		Base: "EUR",
		Rates: map[string]decimal.Decimal{
			"USD": decimal.RequireFromString("1.0300"),
			"GBP": decimal.RequireFromString("0.8400"),
		},
	}
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "GBP", suite.date).Return(nil, suite.notFound()).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "GBP", "USD", suite.date).Return(nil, suite.notFound()).Once()
	suite.mockFeed.On("Fetch", suite.ctx).Return([]fxfeed.RateSheet{*sheet}, nil).Once()
	suite.mockRateRepo.On("UpsertAutomaticRates", suite.ctx, mock.MatchedBy(func(rows []domain.FxRate) bool {
		if len(rows) != 3 {
			return false
		}
		last := rows[2]
		return last.CurrencyFrom == "USD" && last.CurrencyTo == "GBP" && last.Source == domain.FxSourceECB &&
			last.Rate.Equal(decimal.RequireFromString("0.81553398"))
	})).Return(3, nil).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "GBP", suite.date).
		Return(storedRate("USD", "GBP", "0.81553398", domain.FxSourceECB), nil).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "GBP", "USD", suite.date).Return(nil, suite.notFound()).Once()

	rate, err := suite.service.GetRate(suite.ctx, "USD", "GBP", suite.date)

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	suite.Equal(domain.FxSourceECB, rate.Source)
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockFeed.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestGetRate_RemoteFailureIsAbsent() {
	suite.mockRateRepo.On("FindRate", mock.Anything, mock.Anything, mock.Anything, suite.date).Return(nil, suite.notFound())
	suite.mockFeed.On("Fetch", suite.ctx).Return(nil, errors.New("timeout")).Once()

	rate, err := suite.service.GetRate(suite.ctx, "USD", "JPY", suite.date)

	suite.NoError(err)
	suite.Nil(rate)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertAutomaticRates", mock.Anything, mock.Anything)
}

func (suite *FxRateServiceTestSuite) TestGetRate_RepositoryFailurePropagates() {
	dbErr := errors.New("connection reset")
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "EUR", suite.date).Return(nil, dbErr).Once()

	_, err := suite.service.GetRate(suite.ctx, "USD", "EUR", suite.date)

	suite.ErrorIs(err, dbErr)
}

func (suite *FxRateServiceTestSuite) TestGetRate_LimiterGatesRemoteFetch() {
	l := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Hour, Limit: 1})
	svc := services.NewFxRateService(suite.mockRateRepo,
		services.WithFxCache(suite.cache, time.Hour),
		services.WithRateFeed(suite.mockFeed),
		services.WithFetchLimiter(l))
	suite.mockRateRepo.On("FindRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, suite.notFound())
	suite.mockFeed.On("Fetch", suite.ctx).Return(nil, nil).Once()

	first, err := svc.GetRate(suite.ctx, "USD", "JPY", suite.date)
	suite.Require().NoError(err)
	// older than anything the first download covered, so only the limiter stops it
	second, err := svc.GetRate(suite.ctx, "USD", "CHF", day(2024, 6, 3))
	suite.Require().NoError(err)

	suite.Nil(first)
	suite.Nil(second)
	suite.mockFeed.AssertNumberOfCalls(suite.T(), "Fetch", 1)
}

func (suite *FxRateServiceTestSuite) TestOverrideThenGetReturnsOverride() {
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "EUR", suite.date).
		Return(storedRate("USD", "EUR", "0.92", domain.FxSourceECB), nil).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "EUR", "USD", suite.date).Return(nil, suite.notFound()).Once()
	before, err := suite.service.GetRate(suite.ctx, "USD", "EUR", suite.date)
	suite.Require().NoError(err)
	suite.True(before.Rate.Equal(decimal.RequireFromString("0.92")))

	override := decimal.RequireFromString("0.95")
	suite.mockRateRepo.On("UpsertRate", suite.ctx, mock.MatchedBy(func(r domain.FxRate) bool {
		return r.CurrencyFrom == "USD" && r.CurrencyTo == "EUR" && r.Rate.Equal(override) &&
			r.Source == domain.FxSourceOverride && r.RateDate.Equal(suite.date)
	})).Return(nil).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "EUR", suite.date).
		Return(storedRate("USD", "EUR", "0.95", domain.FxSourceOverride), nil).Once()

	_, err = suite.service.OverrideRate(suite.ctx, "USD", "EUR", override, suite.date, "")
	suite.Require().NoError(err)
	after, err := suite.service.GetRate(suite.ctx, "USD", "EUR", suite.date)

	suite.Require().NoError(err)
	suite.True(after.Rate.Equal(override))
	suite.Equal(domain.FxSourceOverride, after.Source)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestOverrideRate_Validation() {
	tests := []struct {
		name   string
		from   string
		to     string
		rate   string
		source domain.FxSource
	}{
		{"same currency", "EUR", "EUR", "1", ""},
		{"zero rate", "USD", "EUR", "0", ""},
		{"negative rate", "USD", "EUR", "-1.2", ""},
		{"automatic source", "USD", "EUR", "0.9", domain.FxSourceECB},
		{"unknown source", "USD", "EUR", "0.9", "guess"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.OverrideRate(suite.ctx, tt.from, tt.to, decimal.RequireFromString(tt.rate), suite.date, tt.source)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything)
}

func (suite *FxRateServiceTestSuite) TestClearOverride() {
	sources := []domain.FxSource{domain.FxSourceManual, domain.FxSourceOverride}
	suite.mockRateRepo.On("DeleteRate", suite.ctx, "USD", "EUR", suite.date, sources).Return(true, nil).Once()
	suite.mockRateRepo.On("DeleteRate", suite.ctx, "GBP", "EUR", suite.date, sources).Return(false, nil).Once()

	suite.NoError(suite.service.ClearOverride(suite.ctx, "usd", "eur", suite.date))
	suite.ErrorIs(suite.service.ClearOverride(suite.ctx, "GBP", "EUR", suite.date), apperrors.ErrNotFound)
}

func (suite *FxRateServiceTestSuite) TestConvertAmount() {
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "EUR", suite.date).
		Return(storedRate("USD", "EUR", "0.91234567", domain.FxSourceECB), nil).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "EUR", "USD", suite.date).Return(nil, suite.notFound()).Once()

	converted, err := suite.service.ConvertAmount(suite.ctx, decimal.RequireFromString("-100.00"), "USD", "EUR", suite.date)

	suite.Require().NoError(err)
	suite.Equal("-91.23", converted.StringFixed(2))
}

func (suite *FxRateServiceTestSuite) TestConvertAmount_Absent() {
	svc := services.NewFxRateService(suite.mockRateRepo, services.WithFxCache(suite.cache, time.Hour))
	suite.mockRateRepo.On("FindRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, suite.notFound())

	converted, err := svc.ConvertAmount(suite.ctx, decimal.NewFromInt(10), "USD", "EUR", suite.date)

	suite.NoError(err)
	suite.Nil(converted)
}

func (suite *FxRateServiceTestSuite) TestSyncLatest() {
	sheets := []fxfeed.RateSheet{
		{Date: day(2025, 1, 16), Base: "EUR", Rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.03")}},
		{Date: day(2025, 1, 17), Base: "EUR", Rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.02"), "XXX": decimal.Zero}},
	}
	suite.mockFeed.On("Fetch", suite.ctx).Return(sheets, nil).Once()
	suite.mockRateRepo.On("UpsertAutomaticRates", suite.ctx, mock.MatchedBy(func(rows []domain.FxRate) bool {
		return len(rows) == 2 && rows[0].CurrencyFrom == "EUR" && rows[1].RateDate.Equal(day(2025, 1, 17))
	})).Return(2, nil).Once()

	written, err := suite.service.SyncLatest(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(2, written)
}

func (suite *FxRateServiceTestSuite) TestGetRate_ManualRateWinsOverFetchedInverse() {
	suite.mockRateRepo.On("FindRate", suite.ctx, "EUR", "USD", suite.date).
		Return(storedRate("EUR", "USD", "1.03", domain.FxSourceECB), nil).Once()
	suite.mockRateRepo.On("FindRate", suite.ctx, "USD", "EUR", suite.date).
		Return(storedRate("USD", "EUR", "0.95", domain.FxSourceManual), nil).Once()

	rate, err := suite.service.GetRate(suite.ctx, "EUR", "USD", suite.date)

	suite.Require().NoError(err)
	suite.Equal(domain.FxSourceManual, rate.Source)
	suite.True(rate.Inverted)
	suite.Equal("1.05263158", rate.Rate.String())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestOverrideRate_UnknownCurrency() {
	currencies := new(MockCurrencyRepository)
	svc := services.NewFxRateService(suite.mockRateRepo,
		services.WithFxCache(suite.cache, time.Hour),
		services.WithCurrencyCatalog(currencies))
	currencies.On("FindCurrencyByCode", suite.ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()
	currencies.On("FindCurrencyByCode", suite.ctx, "XYZ").Return(nil, apperrors.NewNotFoundError("currency XYZ")).Once()

	_, err := svc.OverrideRate(suite.ctx, "USD", "XYZ", decimal.RequireFromString("2"), suite.date, domain.FxSourceManual)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "XYZ")
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything)
	currencies.AssertExpectations(suite.T())
}

func (suite *FxRateServiceTestSuite) TestOverrideRate_CatalogFailurePropagates() {
	currencies := new(MockCurrencyRepository)
	svc := services.NewFxRateService(suite.mockRateRepo,
		services.WithFxCache(suite.cache, time.Hour),
		services.WithCurrencyCatalog(currencies))
	dbErr := errors.New("connection reset")
	currencies.On("FindCurrencyByCode", suite.ctx, "USD").Return(nil, dbErr).Once()

	_, err := svc.OverrideRate(suite.ctx, "USD", "EUR", decimal.RequireFromString("0.9"), suite.date, "")

	suite.ErrorIs(err, dbErr)
	suite.NotErrorIs(err, apperrors.ErrValidation)
}

const threeDayDoc = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<Cube>
		<Cube time="2025-01-17"><Cube currency="USD" rate="1.0300"/></Cube>
		<Cube time="2025-01-16"><Cube currency="USD" rate="1.0250"/></Cube>
		<Cube time="2025-01-15"><Cube currency="USD" rate="1.0200"/></Cube>
	</Cube>
</gesmes:Envelope>`

func (suite *FxRateServiceTestSuite) TestGetRate_OneDownloadServesConsecutiveDays() {
	downloads := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(threeDayDoc))
	}))
	defer srv.Close()

	repo := newMemoryRateRepo()
	// Saturday morning: the 18th is not published
	clock := func() time.Time { return time.Date(2025, 1, 18, 10, 0, 0, 0, time.UTC) }
	svc := services.NewFxRateService(repo,
		services.WithFxCache(suite.cache, time.Hour),
		services.WithRateFeed(fxfeed.NewECBClient(resty.New(), srv.URL)),
		services.WithFxClock(clock))

	want := map[int]string{15: "0.98039216", 16: "0.97560976", 17: "0.97087379"}
	for d := 15; d <= 17; d++ {
		rate, err := svc.GetRate(suite.ctx, "USD", "EUR", day(2025, 1, d))
		suite.Require().NoError(err)
		suite.Require().NotNil(rate, "day %d", d)
		suite.True(rate.Inverted)
		suite.Equal(want[d], rate.Rate.String(), "day %d", d)
	}
	for i := 0; i < 3; i++ {
		rate, err := svc.GetRate(suite.ctx, "USD", "EUR", day(2025, 1, 18))
		suite.Require().NoError(err)
		suite.Nil(rate)
	}

	suite.Equal(1, downloads)
	suite.Equal(3, repo.count())
}
