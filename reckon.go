/*
Copyright 2025 The Reckon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package reckon

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/minitug/reckon/config"
	"github.com/minitug/reckon/database"
	"github.com/minitug/reckon/internal/cache"
	redis_db "github.com/minitug/reckon/internal/redis-db"
)

// Reckon is the reconciliation engine. It owns the record store, the Redis
// client used for run locking, the reporting cache, and the PSP detector
// applied during batch matching.
type Reckon struct {
	datasource database.IDataSource
	cache      cache.Cache
	redis      redis.UniversalClient
	pspDetect  PSPDetector
}

// NewReckon initializes the engine against the configured Redis instance and
// the provided datasource.
func NewReckon(db database.IDataSource) (*Reckon, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	reportCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	newReckon := &Reckon{
		datasource: db,
		cache:      reportCache,
		redis:      redisClient.Client(),
		pspDetect:  HeuristicPSPDetector(),
	}
	return newReckon, nil
}

// SetPSPDetector swaps the detector used for rule3 eligibility. Passing nil
// restores the default heuristic.
func (r *Reckon) SetPSPDetector(detect PSPDetector) {
	if detect == nil {
		detect = HeuristicPSPDetector()
	}
	r.pspDetect = detect
}
