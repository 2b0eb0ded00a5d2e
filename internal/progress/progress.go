package progress

import (
	"fmt"
	"math"
	"time"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/pkg/apperrors"
)

// Порог значимого изменения веса в килограммах
const weightThresholdKg = 2.0

// MaxChartPoints максимальное число точек на графике прогресса
const MaxChartPoints = 7

// Analyze строит отчет о прогрессе по замерам, отсортированным по дате.
// Требуется минимум два замера.
func Analyze(records []models.Record, goal string) (*models.ProgressResponse, error) {
	if len(records) < 2 {
		return nil, apperrors.NewCalculationError(
			"для оценки прогресса нужно минимум два замера")
	}

	first := records[0]
	last := records[len(records)-1]

	weightDelta := round1(last.WeightKg - first.WeightKg)
	bodyFatDelta := round1(last.BodyFatPct - first.BodyFatPct)
	waistDelta := round1(last.WaistCm - first.WaistCm)

	period := HumanizePeriod(last.Date.Sub(first.Date))
	message := fmt.Sprintf("За %s: %s", period, Classify(weightDelta, goal))

	points := make([]models.ProgressPoint, 0, MaxChartPoints)
	for _, r := range SelectChartPoints(records, MaxChartPoints) {
		points = append(points, models.ProgressPoint{
			Date:       r.Date,
			WeightKg:   r.WeightKg,
			BodyFatPct: r.BodyFatPct,
		})
	}

	return &models.ProgressResponse{
		Message:      message,
		Period:       period,
		WeightDelta:  weightDelta,
		BodyFatDelta: bodyFatDelta,
		WaistDelta:   waistDelta,
		Points:       points,
	}, nil
}

// Classify дает качественную оценку изменения веса относительно цели.
// Изменение в пределах порога включительно считается стабильным весом.
func Classify(weightDelta float64, goal string) string {
	switch goal {
	case models.GoalFatLoss:
		switch {
		case weightDelta < -weightThresholdKg:
			return fmt.Sprintf("вес снизился на %.1f кг, отличный прогресс!", -weightDelta)
		case weightDelta > weightThresholdKg:
			return fmt.Sprintf("вес вырос на %.1f кг, движение не в сторону цели", weightDelta)
		default:
			return "вес стабилен, продолжайте в том же духе"
		}
	case models.GoalMassGain:
		switch {
		case weightDelta > weightThresholdKg:
			return fmt.Sprintf("вес вырос на %.1f кг, отличный прогресс!", weightDelta)
		case weightDelta < -weightThresholdKg:
			return fmt.Sprintf("вес снизился на %.1f кг, движение не в сторону цели", -weightDelta)
		default:
			return "вес стабилен, продолжайте в том же духе"
		}
	default:
		if math.Abs(weightDelta) <= weightThresholdKg {
			return "вес стабилен, рекомпозиция идет по плану"
		}
		return fmt.Sprintf("вес изменился на %.1f кг, стоит пересмотреть рацион", weightDelta)
	}
}

// HumanizePeriod переводит длительность наблюдений в удобочитаемый вид:
// до недели в днях, до 30 дней в неделях, дальше в месяцах
func HumanizePeriod(d time.Duration) string {
	days := int(math.Round(d.Hours() / 24))
	if days < 1 {
		days = 1
	}

	switch {
	case days < 7:
		return fmt.Sprintf("%d %s", days, pluralize(days, "день", "дня", "дней"))
	case days < 30:
		weeks := int(math.Round(float64(days) / 7))
		if weeks < 1 {
			weeks = 1
		}
		return fmt.Sprintf("%d %s", weeks, pluralize(weeks, "неделю", "недели", "недель"))
	default:
		months := int(math.Round(float64(days) / 30))
		return fmt.Sprintf("%d %s", months, pluralize(months, "месяц", "месяца", "месяцев"))
	}
}

// SelectChartPoints выбирает не более max равномерно распределенных замеров,
// первый и последний включаются всегда
func SelectChartPoints(records []models.Record, max int) []models.Record {
	if len(records) <= max {
		return records
	}

	selected := make([]models.Record, 0, max)
	lastIdx := -1
	for i := 0; i < max; i++ {
		idx := i * (len(records) - 1) / (max - 1)
		if idx == lastIdx {
			continue
		}
		selected = append(selected, records[idx])
		lastIdx = idx
	}
	return selected
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// pluralize подбирает русскую форму множественного числа
func pluralize(n int, one, few, many string) string {
	n = n % 100
	if n >= 11 && n <= 19 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}
