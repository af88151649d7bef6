package lifecycle

import (
	"strconv"
	"time"
)

// equalValues сравнивает по значению: числа приводятся к float64,
// строки к строкам. JSON присылает float64 и string, база отдаёт
// int64, float64, string, time.Time.
func equalValues(stored, requested any) bool {
	if stored == nil || requested == nil {
		return stored == nil && requested == nil
	}

	if sf, ok := toFloat(stored); ok {
		rf, rok := toFloat(requested)
		return rok && sf == rf
	}

	if sb, ok := stored.(bool); ok {
		rb, rok := requested.(bool)
		return rok && sb == rb
	}

	if st, ok := stored.(time.Time); ok {
		if rt, rok := requested.(time.Time); rok {
			return st.Equal(rt)
		}
		if rs, rok := requested.(string); rok {
			rt, err := time.Parse(time.RFC3339, rs)
			return err == nil && st.Equal(rt)
		}
		return false
	}

	ss, sok := stored.(string)
	rs, rok := requested.(string)
	return sok && rok && ss == rs
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// formatValue - значение поля для записи аудита. nil показываем как none.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "none"
	case string:
		if t == "" {
			return "none"
		}
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return "none"
	}
}
