package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/adapters"
	"github.com/agritechlabs/agroalert-backend/internal/normalize"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
)

// WeatherPollJob polls the weather source and feeds the pipeline.
type WeatherPollJob struct {
	source   adapters.WeatherSource
	pipeline *Pipeline
	interval time.Duration
}

// NewWeatherPollJob builds the weather poll job.
func NewWeatherPollJob(source adapters.WeatherSource, pipeline *Pipeline, interval time.Duration) *WeatherPollJob {
	return &WeatherPollJob{source: source, pipeline: pipeline, interval: interval}
}

func (j *WeatherPollJob) Name() string            { return "weather-poll" }
func (j *WeatherPollJob) Interval() time.Duration { return j.interval }

func (j *WeatherPollJob) Run(ctx context.Context) error {
	alerts, err := j.source.Poll(ctx)
	if err != nil {
		return fmt.Errorf("poll weather source: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	recipients, err := j.pipeline.recipients(ctx, enums.NotificationTypeWeather)
	if err != nil {
		return fmt.Errorf("resolve weather recipients: %w", err)
	}

	now := j.pipeline.now().UTC()
	for _, pref := range recipients {
		opts := j.pipeline.options(pref)
		for _, alert := range alerts {
			j.pipeline.deliver(ctx, normalize.Weather(alert, now, opts))
		}
	}
	return nil
}
