// Package advice turns a reading into planting advice and a coarse weather summary.
package advice

// Level grades an Advice.
type Level string

const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
)

// Code identifies the rule that produced an Advice.
type Code string

const (
	CodeOK           Code = "ok"
	CodeHighTemp     Code = "high_temperature"
	CodeHighHumidity Code = "high_humidity"
	CodeLowHumidity  Code = "low_humidity"
)

// Advice is the outcome of the planting rules for one reading.
type Advice struct {
	Level   Level  `json:"level"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// IsWarning reports whether the advice calls for action.
func (a Advice) IsWarning() bool {
	return a.Level == LevelWarning
}

// ForReading applies the rules in order; the first match wins.
func ForReading(temperature, humidity float64) Advice {
	switch {
	case temperature > 32:
		return Advice{
			Level:   LevelWarning,
			Code:    CodeHighTemp,
			Message: "High temperature: deploy shade nets and irrigate more often to prevent fruit scald.",
		}
	case humidity > 80:
		return Advice{
			Level:   LevelWarning,
			Code:    CodeHighHumidity,
			Message: "High humidity: pest and disease risk is rising, pause sprinklers and ventilate.",
		}
	case humidity < 40:
		return Advice{
			Level:   LevelWarning,
			Code:    CodeLowHumidity,
			Message: "Low humidity: start root drip irrigation now to keep the soil moist.",
		}
	}
	return Advice{
		Level:   LevelOK,
		Code:    CodeOK,
		Message: "Conditions are good for growth; routine pruning and maintenance can go ahead.",
	}
}

// Category is a weather category derived from light and humidity.
type Category string

const (
	Rainy    Category = "rainy"
	Sunny    Category = "sunny"
	Cloudy   Category = "cloudy"
	Overcast Category = "overcast"
)

var emoji = map[Category]string{
	Rainy:    "🌧️",
	Sunny:    "☀️",
	Cloudy:   "⛅",
	Overcast: "☁️",
}

// WeatherSummary is the dashboard weather card.
type WeatherSummary struct {
	Temperature float64  `json:"temp"`
	Humidity    float64  `json:"humidity"`
	Category    Category `json:"category"`
	Emoji       string   `json:"emoji"`
}

// Weather estimates local weather from the sensors alone.
func Weather(temperature, humidity, light float64) WeatherSummary {
	var c Category
	switch {
	case humidity > 85:
		c = Rainy
	case light >= 800:
		c = Sunny
	case light >= 400:
		c = Cloudy
	default:
		c = Overcast
	}
	return WeatherSummary{
		Temperature: temperature,
		Humidity:    humidity,
		Category:    c,
		Emoji:       emoji[c],
	}
}
