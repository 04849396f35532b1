package paper

import (
	"sync"
	"time"

	"github.com/sdcoffey/techan"
	"gitlab.com/aoterocom/PennyWatchBot/helpers"
	"gitlab.com/aoterocom/PennyWatchBot/models"
)

const (
	rsiWindow      = 14
	emaShortWindow = 9
	emaLongWindow  = 21
	macdShort      = 12
	macdLong       = 26
	macdSignalSpan = 9
	atrWindow      = 14
	pumpWindow     = 3
	volumeAvgSpan  = 20
)

// Fundamentals are the slow-moving per-ticker facts the candle tape cannot
// provide.
type Fundamentals struct {
	FloatShares   *float64
	CatalystScore *float64
	CatalystDate  *time.Time
	HasFDA        bool
}

// PaperService is an in-memory indicator provider and order executor fed
// with candle series. It backs tests and one-shot scoring runs where no live
// data feed is wired in.
type PaperService struct {
	series       map[string]*techan.TimeSeries
	fundamentals map[string]Fundamentals
	mutex        sync.RWMutex
}

func NewPaperService() *PaperService {
	return &PaperService{
		series:       make(map[string]*techan.TimeSeries),
		fundamentals: make(map[string]Fundamentals),
	}
}

func (paperService *PaperService) SetSeries(ticker string, timeSeries *techan.TimeSeries) {
	paperService.mutex.Lock()
	paperService.series[ticker] = timeSeries
	paperService.mutex.Unlock()
}

func (paperService *PaperService) SetFundamentals(ticker string, fundamentals Fundamentals) {
	paperService.mutex.Lock()
	paperService.fundamentals[ticker] = fundamentals
	paperService.mutex.Unlock()
}

// Snapshot derives the full indicator set from the ticker's candle series.
// An unknown ticker or a too-short series yields a nil snapshot, which the
// engine treats as "no data".
func (paperService *PaperService) Snapshot(ticker string) (*models.Indicators, error) {
	paperService.mutex.RLock()
	timeSeries := paperService.series[ticker]
	fundamentals := paperService.fundamentals[ticker]
	paperService.mutex.RUnlock()

	if timeSeries == nil || len(timeSeries.Candles) < 2 {
		return nil, nil
	}

	lastIndex := len(timeSeries.Candles) - 1
	closePrices := techan.NewClosePriceIndicator(timeSeries)

	ind := &models.Indicators{
		FloatShares:   fundamentals.FloatShares,
		CatalystScore: fundamentals.CatalystScore,
		CatalystDate:  fundamentals.CatalystDate,
		HasFDA:        fundamentals.HasFDA,
	}

	price := closePrices.Calculate(lastIndex).Float()
	pricePrior := closePrices.Calculate(lastIndex - 1).Float()
	ind.Price = models.Float(price)
	ind.PricePrior = models.Float(pricePrior)
	if pricePrior != 0 {
		ind.Momentum = models.Float(price / pricePrior)
	}

	if lastIndex+1 > rsiWindow {
		rsi := techan.NewRelativeStrengthIndexIndicator(closePrices, rsiWindow)
		ind.RSI = models.Float(rsi.Calculate(lastIndex).Float())
	}

	if lastIndex+1 > emaLongWindow {
		emaShort := techan.NewEMAIndicator(closePrices, emaShortWindow)
		emaLong := techan.NewEMAIndicator(closePrices, emaLongWindow)
		ind.EMAShort = models.Float(emaShort.Calculate(lastIndex).Float())
		ind.EMALong = models.Float(emaLong.Calculate(lastIndex).Float())
	}

	if lastIndex+1 > macdLong {
		macd := techan.NewMACDIndicator(closePrices, macdShort, macdLong)
		macdSignal := techan.NewEMAIndicator(macd, macdSignalSpan)
		ind.MACD = models.Float(macd.Calculate(lastIndex).Float())
		ind.MACDSignal = models.Float(macdSignal.Calculate(lastIndex).Float())
	}

	if lastIndex+1 > atrWindow {
		atr := techan.NewAverageTrueRangeIndicator(timeSeries, atrWindow)
		ind.ATR = models.Float(atr.Calculate(lastIndex).Float())
	}

	ind.VWAP = vwap(timeSeries)

	volume := timeSeries.Candles[lastIndex].Volume.Float()
	ind.Volume = models.Float(volume)
	if lastIndex >= pumpWindow {
		priorVolume := timeSeries.Candles[lastIndex-pumpWindow].Volume.Float()
		ind.VolumePriorWindow = models.Float(priorVolume)

		priorClose := closePrices.Calculate(lastIndex - pumpWindow).Float()
		if priorClose != 0 {
			ind.PumpPct = models.Float((price - priorClose) / priorClose * 100)
		}
	}

	if avg := averageVolume(timeSeries, volumeAvgSpan); avg != 0 {
		ind.VolumeRatio = models.Float(volume / avg)
	}

	return ind, nil
}

// ExecuteOrder fills every paper order at the requested price.
func (paperService *PaperService) ExecuteOrder(ticker string, price float64, quantity int,
	action models.TradeAction) (models.OrderResult, error) {

	return models.OrderResult{
		Ticker:   ticker,
		Action:   action,
		Price:    price,
		Quantity: quantity,
		Filled:   true,
	}, nil
}

func vwap(timeSeries *techan.TimeSeries) *float64 {
	priceVolume := 0.0
	totalVolume := 0.0
	for _, candle := range timeSeries.Candles {
		typical := (candle.MaxPrice.Float() + candle.MinPrice.Float() + candle.ClosePrice.Float()) / 3
		priceVolume += typical * candle.Volume.Float()
		totalVolume += candle.Volume.Float()
	}
	if totalVolume == 0 {
		return nil
	}
	return models.Float(priceVolume / totalVolume)
}

func averageVolume(timeSeries *techan.TimeSeries, span int) float64 {
	count := len(timeSeries.Candles)
	if count == 0 {
		return 0
	}
	start := 0
	if count > span {
		start = count - span
	}
	volumes := make([]float64, 0, count-start)
	for _, candle := range timeSeries.Candles[start:] {
		volumes = append(volumes, candle.Volume.Float())
	}
	return helpers.Sum(volumes) / float64(len(volumes))
}
