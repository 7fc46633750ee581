package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/id3/pkg/errors"
)

// SaveModel はモデルをgob形式でファイルに保存する
//
// モデルは gob.GobEncoder を実装していることを想定する
// （DecisionTreeClassifier は実装済み）。
//
// 使用例:
//
//	clf := tree.NewDecisionTreeClassifier()
//	// ... clf.Fit(...) ...
//	err := model.SaveModel(clf, "model.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}

	if err := SaveModelToWriter(model, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "failed to close model file")
}

// LoadModel はgob形式のファイルからモデルを読み込む
//
//	clf := tree.NewDecisionTreeClassifier()
//	err := model.LoadModel(clf, "model.gob")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
