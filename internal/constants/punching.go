package constants

// Типы вырубки пакетов (punching) и допустимый перепроизвод в процентах.
// Ключи — в нижнем регистре, поиск идёт по нормализованному коду.
var (
	PunchingOverrun = map[string]float64{
		"t-shirt":       20,
		"t-shirt\\hook": 20,
		"banana":        10,
		"none":          5,
	}

	PunchingOverrunReason = map[string]string{
		"t-shirt":       "t-shirt punching waste",
		"t-shirt\\hook": "t-shirt with hook punching waste",
		"banana":        "banana punching waste",
		"none":          "standard film waste",
	}
)

const (
	DefaultOverrunPercent = 5
	DefaultOverrunReason  = "default"
)

// Статусы машин
const (
	MachineActive      = "active"
	MachineMaintenance = "maintenance"
	MachineInactive    = "inactive"
)

// Участки, к которым привязана машина.
const (
	SectionFilm     = "film"
	SectionPrinting = "printing"
	SectionCutting  = "cutting"
)

// WeightPlaces — точность веса рулонов и резов, кг (DECIMAL(12,3)).
const WeightPlaces int32 = 3
