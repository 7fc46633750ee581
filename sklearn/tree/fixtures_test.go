package tree

import (
	"github.com/YuminosukeSato/id3/dataset"
)

const (
	outlook  = "Outlook"
	humidity = "Humidity"
	play     = "Play"
)

// weather is the classic 14-row play-tennis table (9 Yes, 5 No).
func weather() dataset.Dataset {
	rows := [][3]string{
		{"Sunny", "High", "No"},
		{"Sunny", "High", "No"},
		{"Overcast", "High", "Yes"},
		{"Rain", "High", "Yes"},
		{"Rain", "Normal", "Yes"},
		{"Rain", "Normal", "No"},
		{"Overcast", "Normal", "Yes"},
		{"Sunny", "High", "No"},
		{"Sunny", "Normal", "Yes"},
		{"Rain", "Normal", "Yes"},
		{"Sunny", "Normal", "Yes"},
		{"Overcast", "High", "Yes"},
		{"Overcast", "Normal", "Yes"},
		{"Rain", "High", "No"},
	}
	ds := make(dataset.Dataset, len(rows))
	for i, r := range rows {
		ds[i] = dataset.Sample{outlook: r[0], humidity: r[1], play: r[2]}
	}
	return ds
}

// separable has a unique attribute path per label, so fitting it and
// predicting the training rows reproduces every label.
func separable() dataset.Dataset {
	return dataset.Dataset{
		{"color": "red", "size": "S", "class": "apple"},
		{"color": "red", "size": "L", "class": "tomato"},
		{"color": "green", "size": "S", "class": "lime"},
		{"color": "green", "size": "L", "class": "melon"},
		{"color": "yellow", "size": "S", "class": "lemon"},
		{"color": "yellow", "size": "L", "class": "lemon"},
	}
}

// synthetic returns a deterministic dataset with n rows over attributes
// a0..a<k-1>, each with v distinct integer values, and a noisy label.
func synthetic(n, k, v int) (dataset.Dataset, []string) {
	attrs := make([]string, k)
	for j := range attrs {
		attrs[j] = "a" + string(rune('0'+j))
	}
	ds := make(dataset.Dataset, n)
	state := uint32(2463534242)
	next := func() int {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return int(state % 1000)
	}
	for i := range ds {
		s := dataset.Sample{}
		sum := 0
		for _, a := range attrs {
			x := next() % v
			s[a] = x
			sum += x
		}
		label := "neg"
		if (sum+next()%3)%2 == 0 {
			label = "pos"
		}
		s["label"] = label
		ds[i] = s
	}
	return ds, attrs
}
