package calc

import (
	"math"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/pkg/apperrors"
)

// Коэффициенты пересчета калорийности по цели
const (
	FatLossFactor       = 0.85
	RecompositionFactor = 0.95
	MassGainFactor      = 1.10
)

// Нормы макронутриентов на килограмм веса
const (
	ProteinPerKg = 2.0
	FatPerKg     = 1.0
)

// Калорийность грамма макронутриента
const (
	CaloriesPerGramProtein = 4
	CaloriesPerGramFat     = 9
	CaloriesPerGramCarbs   = 4
)

// Пороги процента жира для рекомендации цели.
// Женские пороги выше мужских на 6 процентных пунктов.
const (
	maleLeanThreshold   = 15.0
	maleUpperThreshold  = 25.0
	femaleThresholdBump = 6.0
)

// stepMultipliers сопоставляет диапазон шагов с множителем активности
var stepMultipliers = map[string]float64{
	models.StepsUnder3000: 1.1,
	models.Steps3000To5K:  1.2,
	models.Steps5KTo8K:    1.3,
	models.Steps8KTo10K:   1.4,
	models.StepsOver10K:   1.5,
}

// sportCalories сопоставляет вид спорта со средним расходом за тренировку
var sportCalories = map[string]int{
	models.SportNone:     0,
	models.SportWalking:  200,
	models.SportRunning:  400,
	models.SportStrength: 600,
	models.SportYoga:     200,
	models.SportSwimming: 400,
	models.SportCycling:  300,
	models.SportTeam:     500,
}

// activityMultipliers классическая пятиуровневая шкала активности
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// BodyFat вычисляет процент жира по формуле ВМС США.
// Для женщин обязателен обхват бедер. Результат ограничен [0, 100]
// и округлен до 0.1.
func BodyFat(sex string, heightCm int, waistCm, neckCm float64, hipCm *float64) (float64, error) {
	height := float64(heightCm)

	var bf float64
	switch sex {
	case models.SexMale:
		if waistCm <= neckCm {
			return 0, apperrors.NewCalculationError(
				"обхват талии должен быть больше обхвата шеи")
		}
		bf = 495/(1.0324-0.19077*math.Log10(waistCm-neckCm)+0.15456*math.Log10(height)) - 450
	case models.SexFemale:
		if hipCm == nil {
			return 0, apperrors.NewCalculationError(
				"для расчета требуется обхват бедер")
		}
		if waistCm+*hipCm <= neckCm {
			return 0, apperrors.NewCalculationError(
				"сумма обхватов талии и бедер должна быть больше обхвата шеи")
		}
		bf = 495/(1.29579-0.35004*math.Log10(waistCm+*hipCm-neckCm)+0.22100*math.Log10(height)) - 450
	default:
		return 0, apperrors.NewCalculationError("неизвестный пол")
	}

	if bf < 0 {
		bf = 0
	}
	if bf > 100 {
		bf = 100
	}
	return math.Round(bf*10) / 10, nil
}

// BMR вычисляет базовый обмен по формуле Миффлина-Сан Жеора
func BMR(sex string, weightKg float64, heightCm, ageYears int) float64 {
	base := 10*weightKg + 6.25*float64(heightCm) - 5*float64(ageYears)
	if sex == models.SexMale {
		return base + 5
	}
	return base - 161
}

// StepMultiplier возвращает множитель активности для диапазона шагов
func StepMultiplier(steps string) float64 {
	if m, ok := stepMultipliers[steps]; ok {
		return m
	}
	return stepMultipliers[models.StepsUnder3000]
}

// SportCalories возвращает средний расход калорий за тренировку
func SportCalories(sport string) int {
	return sportCalories[sport]
}

// TDEE вычисляет суточный расход по шагам и виду спорта:
// округленный BMR умножается на множитель шагов, затем
// прибавляется спортивная надбавка
func TDEE(bmr float64, steps, sport string) float64 {
	return math.Round(math.Round(bmr)*StepMultiplier(steps)) + float64(SportCalories(sport))
}

// ActivityMultiplier возвращает множитель классической шкалы активности
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers["sedentary"]
}

// TDEEByActivity вычисляет суточный расход по уровню активности
func TDEEByActivity(bmr float64, level string) float64 {
	return math.Round(math.Round(bmr) * ActivityMultiplier(level))
}

// GoalFactor возвращает коэффициент пересчета калорийности по цели
func GoalFactor(goal string) float64 {
	switch goal {
	case models.GoalFatLoss:
		return FatLossFactor
	case models.GoalMassGain:
		return MassGainFactor
	default:
		return RecompositionFactor
	}
}

// DailyCalories вычисляет целевую калорийность из суточного расхода
func DailyCalories(tdee float64, goal string) int {
	return int(math.Round(tdee * GoalFactor(goal)))
}

// Macros распределяет калорийность по макронутриентам:
// белок 2 г/кг, жиры 1 г/кг, остаток калорий уходит в углеводы
func Macros(calories int, weightKg float64) models.KBJU {
	protein := int(math.Round(ProteinPerKg * weightKg))
	fat := int(math.Round(FatPerKg * weightKg))

	rest := calories - protein*CaloriesPerGramProtein - fat*CaloriesPerGramFat
	if rest < 0 {
		rest = 0
	}
	carbs := int(math.Round(float64(rest) / CaloriesPerGramCarbs))

	return models.KBJU{
		Calories: calories,
		ProteinG: protein,
		FatG:     fat,
		CarbsG:   carbs,
	}
}

// DailyKBJU вычисляет полную дневную норму по замеру
func DailyKBJU(sex string, weightKg float64, heightCm, ageYears int, steps, sport, goal string) models.KBJU {
	bmr := BMR(sex, weightKg, heightCm, ageYears)
	tdee := TDEE(bmr, steps, sport)
	calories := DailyCalories(tdee, goal)
	return Macros(calories, weightKg)
}

// RecommendGoal подбирает цель по проценту жира
func RecommendGoal(sex string, bodyFatPct float64) string {
	lean := maleLeanThreshold
	upper := maleUpperThreshold
	if sex == models.SexFemale {
		lean += femaleThresholdBump
		upper += femaleThresholdBump
	}

	switch {
	case bodyFatPct < lean:
		return models.GoalMassGain
	case bodyFatPct > upper:
		return models.GoalFatLoss
	default:
		return models.GoalRecomposition
	}
}
