// Package domain models OpenWeather current-weather observations and their
// normalized tabular form.
//
// # Data Source
//
// Observations come from the OpenWeather "current weather data" endpoint
// (https://api.openweathermap.org/data/2.5/weather), queried by city name with
// units=metric. A successful response is an HTTP 200 JSON body; only a handful
// of its fields are used:
//
//	{
//	  "name": "London",
//	  "dt": 1700000000,
//	  "main": {"temp": 15.2, "humidity": 80, "pressure": 1012},
//	  "weather": [{"description": "cloudy"}]
//	}
//
// # Normalization
//
// Each observation becomes one [ObservationRecord]:
//
//	city        <- name
//	timestamp   <- dt (epoch seconds, UTC)
//	temperature <- main.temp      (°C, already metric)
//	humidity    <- main.humidity  (%)
//	pressure    <- main.pressure  (hPa)
//	weather     <- weather[0].description
//
// No unit conversion is applied. A payload missing any of these fields yields
// a [MissingFieldError] naming the JSON path, e.g. "main.temp" or
// "weather[0].description".
//
// # Duplicates
//
// Rows that are equal in all six fields are collapsed to their first
// occurrence within a single run. Rows already persisted by earlier runs are
// not consulted, so the sink may hold cross-run duplicates.
package domain
