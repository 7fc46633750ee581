package tree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/pkg/log"
)

func fittedWeather(t *testing.T, opts ...Option) *DecisionTreeClassifier {
	t.Helper()
	clf := NewDecisionTreeClassifier(opts...)
	require.NoError(t, clf.Fit(weather(), []string{outlook, humidity}, play))
	return clf
}

func TestDecisionTreeClassifierFit(t *testing.T) {
	clf := fittedWeather(t)

	assert.True(t, clf.IsFitted())
	assert.True(t, Equal(weatherTree(), clf.Root()))
	assert.Equal(t, 2, clf.Depth())
	assert.Equal(t, 5, clf.NLeaves())
	assert.Equal(t, []string{outlook, humidity}, clf.Attributes())
	assert.Equal(t, play, clf.LabelKey())
	assert.Equal(t, []any{"No", "Yes"}, clf.Classes())
}

func TestDecisionTreeClassifierNotFitted(t *testing.T) {
	clf := NewDecisionTreeClassifier()
	assert.False(t, clf.IsFitted())
	assert.Nil(t, clf.Root())

	sample := dataset.Sample{outlook: "Sunny"}
	checks := map[string]func() error{
		"Predict": func() error { _, err := clf.Predict(sample); return err },
		"PredictPath": func() error {
			_, _, err := clf.PredictPath(sample)
			return err
		},
		"PredictBatch": func() error { _, err := clf.PredictBatch([]dataset.Sample{sample}); return err },
		"Score":        func() error { _, err := clf.Score(weather()); return err },
		"Gains":        func() error { _, err := clf.Gains(weather()); return err },
		"MarshalJSON":  func() error { _, err := clf.MarshalJSON(); return err },
	}
	for method, call := range checks {
		t.Run(method, func(t *testing.T) {
			err := call()
			var notFitted *errors.NotFittedError
			require.True(t, errors.As(err, &notFitted), "got %v", err)
			assert.Equal(t, method, notFitted.Method)
		})
	}
}

func TestDecisionTreeClassifierFitErrors(t *testing.T) {
	tests := []struct {
		name       string
		ds         dataset.Dataset
		attributes []string
		labelKey   string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "empty dataset",
			ds:         dataset.Dataset{},
			attributes: []string{outlook},
			labelKey:   play,
			check: func(t *testing.T, err error) {
				var modelErr *errors.ModelError
				assert.True(t, errors.As(err, &modelErr))
				assert.True(t, errors.Is(err, errors.ErrEmptyData))
			},
		},
		{
			name:       "label among attributes",
			ds:         weather(),
			attributes: []string{outlook, play},
			labelKey:   play,
			check: func(t *testing.T, err error) {
				var validation *errors.ValidationError
				assert.True(t, errors.As(err, &validation))
			},
		},
		{
			name:       "empty label key",
			ds:         weather(),
			attributes: []string{outlook},
			labelKey:   "",
			check: func(t *testing.T, err error) {
				var validation *errors.ValidationError
				assert.True(t, errors.As(err, &validation))
			},
		},
		{
			name:       "empty attribute name",
			ds:         weather(),
			attributes: []string{outlook, ""},
			labelKey:   play,
			check: func(t *testing.T, err error) {
				var validation *errors.ValidationError
				assert.True(t, errors.As(err, &validation))
			},
		},
		{
			name:       "missing label",
			ds:         weather(),
			attributes: []string{outlook},
			labelKey:   "Wind",
			check: func(t *testing.T, err error) {
				var missing *errors.MissingKeyError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, "Wind", missing.Key)
			},
		},
		{
			name:       "missing attribute",
			ds:         weather(),
			attributes: []string{"Wind"},
			labelKey:   play,
			check: func(t *testing.T, err error) {
				var missing *errors.MissingKeyError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, "Wind", missing.Key)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := fittedWeather(t)
			err := clf.Fit(tt.ds, tt.attributes, tt.labelKey)
			require.Error(t, err)
			tt.check(t, err)

			assert.False(t, clf.IsFitted(), "a failed Fit must leave the model unfitted")
			assert.Nil(t, clf.Root())
			_, err = clf.Predict(dataset.Sample{outlook: "Sunny"})
			assert.Error(t, err)
		})
	}
}

func TestDecisionTreeClassifierFitRecoversPanics(t *testing.T) {
	clf := NewDecisionTreeClassifier()
	ds := dataset.Dataset{
		{"k": map[string]int{"a": 1}, "y": "p"},
		{"k": map[string]int{"b": 1}, "y": "q"},
	}
	err := clf.Fit(ds, []string{"k"}, "y")

	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr), "got %v", err)
	assert.False(t, clf.IsFitted())
}

func TestDecisionTreeClassifierRefitIsIdempotent(t *testing.T) {
	clf := fittedWeather(t)
	first := clf.Root()

	require.NoError(t, clf.Fit(weather(), []string{outlook, humidity}, play))
	assert.True(t, Equal(first, clf.Root()))

	require.NoError(t, clf.Fit(separable(), []string{"color", "size"}, "class"))
	assert.Equal(t, "class", clf.LabelKey())
	assert.Equal(t, []any{"apple", "lemon", "lime", "melon", "tomato"}, clf.Classes())
}

func TestDecisionTreeClassifierDuplicateAttributes(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	previous := log.GetProvider()
	log.SetProvider(provider)
	defer log.SetProvider(previous)

	clf := NewDecisionTreeClassifier()
	err := clf.Fit(weather(), []string{outlook, humidity, outlook, outlook}, play)
	require.NoError(t, err)

	assert.Equal(t, []string{outlook, humidity}, clf.Attributes())
	assert.True(t, Equal(weatherTree(), clf.Root()))

	logger := provider.Logger()
	assert.True(t, logger.ContainsField("message", `attribute "Outlook" listed 3 times; duplicates are ignored`))
	assert.True(t, logger.ContainsField(log.ComponentKey, "warnings"))
}

func TestDecisionTreeClassifierPredict(t *testing.T) {
	clf := fittedWeather(t)

	label, err := clf.Predict(dataset.Sample{outlook: "Sunny", humidity: "Normal"})
	require.NoError(t, err)
	assert.Equal(t, "Yes", label)

	label, err = clf.Predict(dataset.Sample{outlook: "Storm"})
	require.NoError(t, err)
	assert.Equal(t, "Yes", label)

	label, path, err := clf.PredictPath(dataset.Sample{outlook: "Rain", humidity: "Extreme"})
	require.NoError(t, err)
	assert.Equal(t, "Yes", label)
	assert.Equal(t, []PathStep{{outlook, "Rain"}, {humidity, "Extreme"}}, path)
}

func TestDecisionTreeClassifierPredictBatch(t *testing.T) {
	ds := weather()
	sequential := fittedWeather(t)
	concurrent := fittedWeather(t, WithParallel(2))

	want := make([]any, len(ds))
	for i, s := range ds {
		label, err := sequential.Predict(s)
		require.NoError(t, err)
		want[i] = label
	}

	got, err := sequential.PredictBatch(ds)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = concurrent.PredictBatch(ds)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = sequential.PredictBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecisionTreeClassifierConcurrentPredict(t *testing.T) {
	clf := fittedWeather(t)
	ds := weather()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for g := range errs {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for _, s := range ds {
				if _, err := clf.Predict(s); err != nil {
					errs[g] = err
					return
				}
			}
		}(g)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestDecisionTreeClassifierScore(t *testing.T) {
	clf := fittedWeather(t)

	// Two Rain rows disagree with their leaves.
	acc, err := clf.Score(weather())
	require.NoError(t, err)
	assert.InDelta(t, 12.0/14.0, acc, 1e-12)

	clf2 := NewDecisionTreeClassifier()
	require.NoError(t, clf2.Fit(separable(), []string{"color", "size"}, "class"))
	acc, err = clf2.Score(separable())
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	_, err = clf.Score(dataset.Dataset{{outlook: "Sunny"}})
	var missing *errors.MissingKeyError
	assert.True(t, errors.As(err, &missing))

	_, err = clf.Score(nil)
	assert.Error(t, err)
}

func TestDecisionTreeClassifierGains(t *testing.T) {
	clf := fittedWeather(t)
	gains, err := clf.Gains(weather())
	require.NoError(t, err)
	assert.InDelta(t, 0.24674981977443933, gains[outlook], 1e-12)
	assert.InDelta(t, 0.15183550136234159, gains[humidity], 1e-12)
}

func TestDecisionTreeClassifierParams(t *testing.T) {
	clf := NewDecisionTreeClassifier(WithParallel(64))
	assert.Equal(t, map[string]interface{}{"parallel_threshold": 64}, clf.GetParams())

	require.NoError(t, clf.SetParams(map[string]interface{}{"parallel_threshold": float64(8)}))
	assert.Equal(t, 8, clf.GetParams()["parallel_threshold"])

	require.NoError(t, clf.SetParams(map[string]interface{}{"parallel_threshold": int64(0)}))
	assert.Equal(t, 0, clf.GetParams()["parallel_threshold"])

	invalid := []map[string]interface{}{
		{"parallel_threshold": 2.5},
		{"parallel_threshold": -1},
		{"parallel_threshold": "4"},
		{"max_depth": 3},
	}
	for _, params := range invalid {
		err := clf.SetParams(params)
		var validation *errors.ValidationError
		assert.True(t, errors.As(err, &validation), "params %v", params)
	}
}

func TestDecisionTreeClassifierLogging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	clf := fittedWeather(t, WithLogger(logger))

	assert.True(t, logger.ContainsMessage("Model fitted"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "DecisionTreeClassifier"))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationFit))
	assert.True(t, logger.ContainsField(log.DepthKey, float64(2)))
	assert.True(t, logger.ContainsField(log.LeavesKey, float64(5)))
	assert.True(t, logger.ContainsField(log.RootAttributeKey, outlook))

	logger.Clear()
	_, err := clf.PredictBatch(weather())
	require.NoError(t, err)
	assert.True(t, logger.ContainsField(log.PredsKey, float64(14)))

	logger.Clear()
	require.Error(t, clf.Fit(weather(), []string{play}, play))
	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "ERROR", last["level"])
	assert.Contains(t, last[log.ErrorKey], "label_key")
}

func TestDecisionTreeClassifierSetParamsDuringPredict(t *testing.T) {
	clf := fittedWeather(t)
	ds := weather()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			assert.NoError(t, clf.SetParams(map[string]interface{}{"parallel_threshold": i % 4}))
			_ = clf.GetParams()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			preds, err := clf.PredictBatch(ds)
			assert.NoError(t, err)
			assert.Len(t, preds, len(ds))
		}
	}()
	wg.Wait()
}
