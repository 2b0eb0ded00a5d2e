package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"KbjuCoachService/pkg/apperrors"
)

// Границы допустимых значений замеров
const (
	MinHeightCm = 100
	MaxHeightCm = 250
	MinWeightKg = 30
	MaxWeightKg = 300
	MinWaistCm  = 50
	MaxWaistCm  = 200
	MinNeckCm   = 20
	MaxNeckCm   = 100
	MinHipCm    = 50
	MaxHipCm    = 200
	MinAgeYears = 12
	MaxAgeYears = 100
)

var (
	nameRe     = regexp.MustCompile(`^[а-яА-ЯёЁa-zA-Z\s-]+$`)
	foodItemRe = regexp.MustCompile(`^[а-яА-ЯёЁa-zA-Z\s-]+$`)
)

// ValidateFullName проверяет ФИО и разбивает его на фамилию и имя.
// Требуется минимум два слова, каждое не короче двух букв.
func ValidateFullName(input string) (lastName, firstName string, err error) {
	trimmed := strings.TrimSpace(input)
	if len([]rune(trimmed)) < 3 || len([]rune(trimmed)) > 50 {
		return "", "", apperrors.NewValidationError("name",
			"введите фамилию и имя длиной от 3 до 50 символов")
	}
	if !nameRe.MatchString(trimmed) {
		return "", "", apperrors.NewValidationError("name",
			"имя может содержать только буквы, пробелы и дефисы")
	}

	words := strings.Fields(trimmed)
	if len(words) < 2 {
		return "", "", apperrors.NewValidationError("name",
			"введите фамилию и имя через пробел")
	}
	for _, w := range words {
		if len([]rune(w)) < 2 {
			return "", "", apperrors.NewValidationError("name",
				"каждое слово должно содержать минимум 2 буквы")
		}
	}

	return words[0], words[1], nil
}

// ValidateBirthDate проверяет дату рождения в формате ДД.ММ.ГГГГ.
// Дата не может быть в будущем, возраст от 12 до 100 лет.
func ValidateBirthDate(input string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	birthDate, err := time.Parse("02.01.2006", trimmed)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("birth_date",
			"введите дату рождения в формате ДД.ММ.ГГГГ, например 15.06.1990")
	}

	if birthDate.After(now) {
		return time.Time{}, apperrors.NewValidationError("birth_date",
			"дата рождения не может быть в будущем")
	}

	age := AgeYears(birthDate, now)
	if age < MinAgeYears || age > MaxAgeYears {
		return time.Time{}, apperrors.NewValidationError("birth_date",
			"возраст должен быть от 12 до 100 лет")
	}

	return birthDate, nil
}

// AgeYears возвращает полное число лет на дату now с точностью до дня
func AgeYears(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	// День рождения в этом году еще не наступил
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	return years
}

// ValidateHeight проверяет рост в сантиметрах
func ValidateHeight(input string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, apperrors.NewValidationError("height",
			"введите рост целым числом в сантиметрах, например 175")
	}
	if value < MinHeightCm || value > MaxHeightCm {
		return 0, apperrors.NewValidationError("height",
			"рост должен быть от 100 до 250 см")
	}
	return value, nil
}

// ValidateWeight проверяет вес в килограммах
func ValidateWeight(input string) (float64, error) {
	value, err := parseMeasure(input)
	if err != nil {
		return 0, apperrors.NewValidationError("weight",
			"введите вес числом в килограммах, например 70.5")
	}
	if value < MinWeightKg || value > MaxWeightKg {
		return 0, apperrors.NewValidationError("weight",
			"вес должен быть от 30 до 300 кг")
	}
	return value, nil
}

// ValidateWaist проверяет обхват талии в сантиметрах
func ValidateWaist(input string) (float64, error) {
	value, err := parseMeasure(input)
	if err != nil {
		return 0, apperrors.NewValidationError("waist",
			"введите обхват талии числом в сантиметрах")
	}
	if value < MinWaistCm || value > MaxWaistCm {
		return 0, apperrors.NewValidationError("waist",
			"обхват талии должен быть от 50 до 200 см")
	}
	return value, nil
}

// ValidateNeck проверяет обхват шеи в сантиметрах
func ValidateNeck(input string) (float64, error) {
	value, err := parseMeasure(input)
	if err != nil {
		return 0, apperrors.NewValidationError("neck",
			"введите обхват шеи числом в сантиметрах")
	}
	if value < MinNeckCm || value > MaxNeckCm {
		return 0, apperrors.NewValidationError("neck",
			"обхват шеи должен быть от 20 до 100 см")
	}
	return value, nil
}

// ValidateHip проверяет обхват бедер в сантиметрах
func ValidateHip(input string) (float64, error) {
	value, err := parseMeasure(input)
	if err != nil {
		return 0, apperrors.NewValidationError("hip",
			"введите обхват бедер числом в сантиметрах")
	}
	if value < MinHipCm || value > MaxHipCm {
		return 0, apperrors.NewValidationError("hip",
			"обхват бедер должен быть от 50 до 200 см")
	}
	return value, nil
}

// ValidateSex проверяет выбор пола
func ValidateSex(input string, allowed []string) (string, error) {
	return validateEnum(input, allowed, "sex", "выберите пол из предложенных вариантов")
}

// ValidateSteps проверяет выбор диапазона шагов
func ValidateSteps(input string, allowed []string) (string, error) {
	return validateEnum(input, allowed, "steps", "выберите диапазон шагов из предложенных вариантов")
}

// ValidateSportType проверяет выбор вида спорта
func ValidateSportType(input string, allowed []string) (string, error) {
	return validateEnum(input, allowed, "sport_type", "выберите вид активности из предложенных вариантов")
}

// ValidateSportFrequency проверяет выбор частоты тренировок
func ValidateSportFrequency(input string, allowed []string) (string, error) {
	return validateEnum(input, allowed, "sport_freq", "выберите частоту тренировок из предложенных вариантов")
}

// ValidateGoal проверяет выбор цели
func ValidateGoal(input string, allowed []string) (string, error) {
	return validateEnum(input, allowed, "goal", "выберите цель из предложенных вариантов")
}

// ValidateFoodItems разбирает список продуктов через запятую.
// Дубликаты отбрасываются без учета регистра.
func ValidateFoodItems(input string) ([]string, error) {
	parts := strings.Split(input, ",")
	seen := make(map[string]struct{})
	items := make([]string, 0, len(parts))

	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if len([]rune(item)) < 3 {
			return nil, apperrors.NewValidationError("food",
				"каждый продукт должен содержать минимум 3 символа")
		}
		if !foodItemRe.MatchString(item) {
			return nil, apperrors.NewValidationError("food",
				"названия продуктов могут содержать только буквы, пробелы и дефисы")
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, apperrors.NewValidationError("food",
			"перечислите продукты через запятую, например: гречка, курица, творог")
	}

	return items, nil
}

// ValidateFoodKind проверяет вид списка предпочтений
func ValidateFoodKind(input string, allowed []string) (string, error) {
	return validateEnum(input, allowed, "food_kind", "допустимые списки: likes, dislikes")
}

func validateEnum(input string, allowed []string, field, reason string) (string, error) {
	value := strings.TrimSpace(input)
	for _, option := range allowed {
		if value == option {
			return value, nil
		}
	}
	return "", apperrors.NewValidationError(field, reason)
}

func parseMeasure(input string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	return strconv.ParseFloat(normalized, 64)
}
