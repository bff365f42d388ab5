package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]string{"A": "1"}
	b := map[string]string{"B": "2", "C": "3"}

	all := map[string]string{}
	for key, value := range IterSeq2Concat(maps.All(a), maps.All(b)) {
		all[key] = value
	}
	assert.Equal(map[string]string{"A": "1", "B": "2", "C": "3"}, all)

	count := 0
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		break
	}
	assert.Equal(1, count)

	for range IterSeq2Concat[string, string]() {
		t.Fatal("empty concatenation yielded a value")
	}
}
