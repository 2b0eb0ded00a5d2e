package dialog

import (
	"fmt"
	"strings"

	"KbjuCoachService/internal/models"
)

// Шаги сценариев диалога
const (
	StepName      = "name"
	StepBirthDate = "birth_date"
	StepHeight    = "height"
	StepSex       = "sex"
	StepWeight    = "weight"
	StepSteps     = "steps"
	StepSportType = "sport_type"
	StepSportFreq = "sport_freq"
	StepWaist     = "waist"
	StepNeck      = "neck"
	StepHip       = "hip"
	StepGoal      = "goal"
)

// Команды, обрабатываемые до шагов сценария
const (
	CommandStart  = "/start"
	CommandUpdate = "/update"
	CommandEdit   = "/edit"
	CommandCancel = "/cancel"
)

// Допустимые варианты ответов на шаги с выбором
var (
	SexOptions = []string{models.SexMale, models.SexFemale}

	StepsOptions = []string{
		models.StepsUnder3000,
		models.Steps3000To5K,
		models.Steps5KTo8K,
		models.Steps8KTo10K,
		models.StepsOver10K,
	}

	SportOptions = []string{
		models.SportNone,
		models.SportWalking,
		models.SportRunning,
		models.SportStrength,
		models.SportYoga,
		models.SportSwimming,
		models.SportCycling,
		models.SportTeam,
	}

	FreqOptions = []string{
		models.Freq1To2,
		models.Freq3To4,
		models.Freq5AndUp,
	}

	GoalOptions = []string{
		models.GoalFatLoss,
		models.GoalRecomposition,
		models.GoalMassGain,
	}
)

// prompts содержит тексты запросов для каждого шага
var prompts = map[string]string{
	StepName:      "Введите фамилию и имя через пробел, например: Иванов Иван",
	StepBirthDate: "Введите дату рождения в формате ДД.ММ.ГГГГ, например: 15.06.1990",
	StepHeight:    "Введите рост в сантиметрах, например: 175",
	StepSex:       "Выберите пол: " + strings.Join(SexOptions, ", "),
	StepWeight:    "Введите текущий вес в килограммах, например: 70.5",
	StepSteps:     "Сколько шагов вы проходите в день? Варианты: " + strings.Join(StepsOptions, ", "),
	StepSportType: "Каким спортом вы занимаетесь? Варианты: " + strings.Join(SportOptions, ", "),
	StepSportFreq: "Сколько тренировок в неделю? Варианты: " + strings.Join(FreqOptions, ", "),
	StepWaist:     "Введите обхват талии в сантиметрах",
	StepNeck:      "Введите обхват шеи в сантиметрах",
	StepHip:       "Введите обхват бедер в сантиметрах",
}

// Служебные сообщения движка
const (
	MsgAlreadyRegistered = "Вы уже зарегистрированы. Отправьте /update, чтобы обновить показатели, или /edit, чтобы заполнить анкету заново."
	MsgNotRegistered     = "Сначала нужно зарегистрироваться. Отправьте /start."
	MsgNoActiveDialog    = "Активного диалога нет. Отправьте /start для регистрации или /update для обновления показателей."
	MsgCancelled         = "Сценарий отменен. Черновик удален."
	MsgRetryLater        = "Не удалось сохранить данные, попробуйте повторить последний шаг чуть позже."
)

// Prompt возвращает текст запроса для шага
func Prompt(step string) string {
	return prompts[step]
}

// goalPrompt строит запрос выбора цели с рекомендацией по проценту жира
func goalPrompt(bodyFatPct float64, recommended string) string {
	return fmt.Sprintf(
		"Ваш процент жира: %.1f%%. Рекомендуемая цель: %s.\nВыберите цель: %s",
		bodyFatPct, goalTitle(recommended), strings.Join(GoalOptions, ", "))
}

// goalTitle возвращает русское название цели
func goalTitle(goal string) string {
	switch goal {
	case models.GoalFatLoss:
		return "снижение жировой массы"
	case models.GoalMassGain:
		return "набор массы"
	default:
		return "рекомпозиция"
	}
}
