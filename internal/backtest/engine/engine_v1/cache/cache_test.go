package cache

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CacheTestSuite struct {
	suite.Suite
	cache Cache
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (suite *CacheTestSuite) SetupTest() {
	suite.cache = NewCacheV1()
}

func (suite *CacheTestSuite) TestSetAndGet() {
	suite.cache.Set("last_signal", "bullish")

	value, ok := suite.cache.Get("last_signal")
	suite.True(ok)
	suite.Equal("bullish", value)
}

func (suite *CacheTestSuite) TestGetMissingKey() {
	_, ok := suite.cache.Get("missing")
	suite.False(ok)
}

func (suite *CacheTestSuite) TestOverwrite() {
	suite.cache.Set("count", 1)
	suite.cache.Set("count", 2)

	value, ok := suite.cache.Get("count")
	suite.True(ok)
	suite.Equal(2, value)
}

func (suite *CacheTestSuite) TestReset() {
	suite.cache.Set("count", 1)
	suite.cache.Reset()

	_, ok := suite.cache.Get("count")
	suite.False(ok)
}
