package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://sh.lianjia.com")
	require.NoError(t, err)

	got, err := ToAbsoluteURL(base, "/chengjiao/pudong/")
	require.NoError(t, err)
	assert.Equal(t, "https://sh.lianjia.com/chengjiao/pudong/", got)

	got, err = ToAbsoluteURL(base, "https://sh.lianjia.com/chengjiao/1.html")
	require.NoError(t, err)
	assert.Equal(t, "https://sh.lianjia.com/chengjiao/1.html", got)

	_, err = ToAbsoluteURL(base, "http://[::1")
	assert.Error(t, err)
}

func TestHashURLIsStable(t *testing.T) {
	a := HashURL("https://sh.lianjia.com/chengjiao/1.html")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashURL("https://sh.lianjia.com/chengjiao/1.html"))
	assert.NotEqual(t, a, HashURL("https://sh.lianjia.com/chengjiao/2.html"))
}
