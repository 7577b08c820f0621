package template

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

func buildExprEnv(ctx RenderContext) exprEnv {
	return exprEnv{
		Var: func(name string) string {
			return ctx.Vars[name]
		},
		Vars:   ctx.Vars,
		Fields: ctx.Fields,
		Now: func() string {
			return ctx.Now
		},
		NowFormat: func(layout string) string {
			return formatNow(ctx.Now, layout)
		},
		UUID: generateUUID,
		RandomInt: func(min, max int) int {
			if min >= max {
				return min
			}
			return min + randIntN(max-min+1)
		},
		Seq: seqInts,
		ToJSON: func(v any) string {
			return toJSONString(v)
		},
		JsonPath: func(expression string) string {
			return extractJSONPath(ctx.Fields, expression)
		},
	}
}

func formatNow(now, layout string) string {
	t, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return now
	}
	return t.Format(layout)
}

func seqInts(start, end int) []int {
	if end < start {
		return nil
	}
	s := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		s = append(s, i)
	}
	return s
}

func randIntN(n int) int {
	return rand.IntN(n)
}

func toJSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// extractJSONPath evaluates expression against fields. Fields are round-tripped
// through JSON so that values decoded from YAML compare like JSON values.
func extractJSONPath(fields map[string]any, expression string) string {
	if fields == nil {
		return ""
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	result, err := jsonpath.Get(expression, data)
	if err != nil {
		return ""
	}
	switch v := result.(type) {
	case string:
		return v
	default:
		return toJSONString(v)
	}
}

func generateUUID() string {
	return uuid.NewString()
}
