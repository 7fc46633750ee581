package preprocessing

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/id3/core/model"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/pkg/log"
)

// QuantileMethod は分位点の計算方法
type QuantileMethod int

const (
	// QuantileLinear は順序統計量の間を線形補間する（pandas.qcut と同じ）
	QuantileLinear QuantileMethod = iota
	// QuantileEmpirical は経験分布関数の逆関数を使う（gonum stat.Empirical）
	QuantileEmpirical
)

// String はメソッド名を返す
func (m QuantileMethod) String() string {
	switch m {
	case QuantileLinear:
		return "linear"
	case QuantileEmpirical:
		return "empirical"
	default:
		return fmt.Sprintf("QuantileMethod(%d)", int(m))
	}
}

// ParseQuantileMethod は "linear" / "empirical" を QuantileMethod に変換する
func ParseQuantileMethod(s string) (QuantileMethod, error) {
	switch s {
	case "", "linear":
		return QuantileLinear, nil
	case "empirical":
		return QuantileEmpirical, nil
	default:
		return 0, errors.NewValidationError("method", "must be linear or empirical", s)
	}
}

// KBinsDiscretizer は連続値の特徴量を分位点ビンの番号に変換する
//
// Fit で各特徴量の分位点境界を学習し、Transform でその境界を使って
// 値をビン番号 (0, 1, ...) に置き換える。ビンは右閉区間 (e[i], e[i+1]] で、
// 最初のビンだけ下端 e[0] を含む。境界の外側の値と NaN は NaN になり、
// dataset.WithBins で欠損値 (nil) として扱われる。
//
// 重複した境界は取り除かれるため、ビン数が NBins より少なくなることがある。
// その場合は BinningWarning が発行される。
type KBinsDiscretizer struct {
	state *model.StateManager

	// NBins は要求するビン数
	NBins int

	// Method は分位点の計算方法
	Method QuantileMethod

	// Edges は特徴量ごとのビン境界（昇順、重複なし）
	Edges [][]float64

	// NFeatures は特徴量の数
	NFeatures int

	logger log.Logger
}

// NewKBinsDiscretizer は新しいKBinsDiscretizerを作成する
//
// 使用例:
//
//	disc := preprocessing.NewKBinsDiscretizer(4, preprocessing.QuantileLinear)
//	err := disc.Fit(XTrain)
//	XBinned, err := disc.Transform(XTest)
func NewKBinsDiscretizer(nBins int, method QuantileMethod) *KBinsDiscretizer {
	return &KBinsDiscretizer{
		state:  model.NewStateManager(),
		NBins:  nBins,
		Method: method,
		logger: log.GetLoggerWithName("preprocessing").With(log.ModelNameKey, "KBinsDiscretizer"),
	}
}

// Fit は訓練データから各特徴量のビン境界を計算する
//
// NaN は無視される。有限値を一つも持たない特徴量はエラーになる。
func (d *KBinsDiscretizer) Fit(X mat.Matrix) error {
	d.state.Reset()
	d.Edges = nil
	d.NFeatures = 0

	if d.NBins < 1 {
		return errors.NewValidationError("n_bins", "must be at least 1", d.NBins)
	}
	if d.Method != QuantileLinear && d.Method != QuantileEmpirical {
		return errors.NewValidationError("method", "unknown quantile method", d.Method)
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("KBinsDiscretizer.Fit", "empty data", errors.ErrEmptyData)
	}

	edges := make([][]float64, c)
	column := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		column = column[:0]
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				column = append(column, v)
			}
		}
		if len(column) == 0 {
			return errors.NewValueError("KBinsDiscretizer.Fit",
				fmt.Sprintf("feature %d has no non-NaN values", j))
		}
		sort.Float64s(column)

		e := d.quantileEdges(column)
		if got := max(len(e)-1, 1); got < d.NBins {
			errors.Warn(errors.NewBinningWarning(j, d.NBins, got))
		}
		if len(e) == 1 {
			// Constant feature: a single closed bin [v, v].
			e = append(e, e[0])
		}
		edges[j] = e
	}

	d.Edges = edges
	d.NFeatures = c
	d.state.SetDimensions(c, r)
	d.state.SetFitted()

	d.logger.Debug("Discretizer fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// quantileEdges returns the NBins+1 quantiles of sorted with consecutive
// duplicates removed.
func (d *KBinsDiscretizer) quantileEdges(sorted []float64) []float64 {
	n := len(sorted)
	edges := make([]float64, 0, d.NBins+1)
	for k := 0; k <= d.NBins; k++ {
		p := float64(k) / float64(d.NBins)

		var q float64
		switch {
		case k == 0:
			q = sorted[0]
		case k == d.NBins:
			q = sorted[n-1]
		case d.Method == QuantileEmpirical:
			q = stat.Quantile(p, stat.Empirical, sorted, nil)
		default:
			h := p * float64(n-1)
			lo := int(math.Floor(h))
			q = sorted[lo]
			if lo+1 < n {
				q += (h - float64(lo)) * (sorted[lo+1] - sorted[lo])
			}
		}

		if len(edges) == 0 || q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}
	return edges
}

// Transform は学習済みの境界で各値をビン番号に変換する
func (d *KBinsDiscretizer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := d.state.RequireFitted("KBinsDiscretizer", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != d.NFeatures {
		return nil, errors.NewDimensionError("KBinsDiscretizer.Transform", d.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		edges := d.Edges[j]
		for i := 0; i < r; i++ {
			result.Set(i, j, binOf(edges, X.At(i, j)))
		}
	}
	return result, nil
}

func binOf(edges []float64, v float64) float64 {
	last := len(edges) - 1
	if math.IsNaN(v) || v < edges[0] || v > edges[last] {
		return math.NaN()
	}
	if v == edges[0] {
		return 0
	}
	// smallest i with edges[i] >= v; v lies in (edges[i-1], edges[i]].
	i := sort.SearchFloat64s(edges, v)
	return float64(i - 1)
}

// FitTransform はFitとTransformを連続して実行する
func (d *KBinsDiscretizer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := d.Fit(X); err != nil {
		return nil, err
	}
	return d.Transform(X)
}

// BinsPerFeature は各特徴量の実際のビン数を返す
func (d *KBinsDiscretizer) BinsPerFeature() []int {
	out := make([]int, len(d.Edges))
	for j, e := range d.Edges {
		out[j] = len(e) - 1
	}
	return out
}

// IsFitted は学習済みかどうかを返す
func (d *KBinsDiscretizer) IsFitted() bool {
	return d.state.IsFitted()
}

// GetParams は離散化器のパラメータを取得する
func (d *KBinsDiscretizer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_bins": d.NBins,
		"method": d.Method.String(),
	}
}

// SetParams は離散化器のパラメータを設定する
func (d *KBinsDiscretizer) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_bins":
			n, ok := value.(int)
			if !ok || n < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			d.NBins = n
		case "method":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			m, err := ParseQuantileMethod(s)
			if err != nil {
				return err
			}
			d.Method = m
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// String はKBinsDiscretizerの文字列表現を返す
func (d *KBinsDiscretizer) String() string {
	if !d.IsFitted() {
		return fmt.Sprintf("KBinsDiscretizer(n_bins=%d, method=%s)", d.NBins, d.Method)
	}
	return fmt.Sprintf("KBinsDiscretizer(n_bins=%d, method=%s, n_features=%d)", d.NBins, d.Method, d.NFeatures)
}

type discretizerJSON struct {
	NBins  int         `json:"n_bins"`
	Method string      `json:"method"`
	Edges  [][]float64 `json:"edges"`
}

// MarshalJSON は学習済みの境界を JSON に変換する
func (d *KBinsDiscretizer) MarshalJSON() ([]byte, error) {
	if err := d.state.RequireFitted("KBinsDiscretizer", "MarshalJSON"); err != nil {
		return nil, err
	}
	return json.Marshal(discretizerJSON{
		NBins:  d.NBins,
		Method: d.Method.String(),
		Edges:  d.Edges,
	})
}

// UnmarshalJSON は MarshalJSON の出力から学習済みの離散化器を復元する
func (d *KBinsDiscretizer) UnmarshalJSON(data []byte) error {
	var j discretizerJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errors.Wrap(err, "decoding discretizer")
	}
	method, err := ParseQuantileMethod(j.Method)
	if err != nil {
		return err
	}
	if j.NBins < 1 {
		return errors.NewValidationError("n_bins", "must be at least 1", j.NBins)
	}
	if len(j.Edges) == 0 {
		return errors.NewValueError("KBinsDiscretizer.UnmarshalJSON", "no edges")
	}
	for f, e := range j.Edges {
		if len(e) < 2 || !sort.Float64sAreSorted(e) {
			return errors.NewValueError("KBinsDiscretizer.UnmarshalJSON",
				fmt.Sprintf("feature %d: edges must be at least two ascending values", f))
		}
	}

	if d.state == nil {
		d.state = model.NewStateManager()
	}
	if d.logger == nil {
		d.logger = log.GetLoggerWithName("preprocessing").With(log.ModelNameKey, "KBinsDiscretizer")
	}
	d.NBins = j.NBins
	d.Method = method
	d.Edges = j.Edges
	d.NFeatures = len(j.Edges)
	d.state.Reset()
	d.state.SetDimensions(d.NFeatures, 0)
	d.state.SetFitted()
	return nil
}

var (
	_ model.Transformer     = (*KBinsDiscretizer)(nil)
	_ model.ParameterGetter = (*KBinsDiscretizer)(nil)
	_ model.ParameterSetter = (*KBinsDiscretizer)(nil)
)
