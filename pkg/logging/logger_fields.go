package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Library context fields

func Component(name string) Field {
	return String("component", name)
}

func File(path string) Field {
	return String("file", path)
}

func Line(n int) Field {
	return Int("line", n)
}

func Cell(name string) Field {
	return String("cell", name)
}

func Pin(name string) Field {
	return String("pin", name)
}

func TableType(name string) Field {
	return String("table_type", name)
}

func Dialect(name string) Field {
	return String("dialect", name)
}

func Class(name string) Field {
	return String("class", name)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Sink(name string) Field {
	return String("sink", name)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
