package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/membership-gate/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateEndDate(t *testing.T) {
	start := date(2025, time.October, 14)

	tests := []struct {
		name     string
		planType models.PlanType
		want     *time.Time
	}{
		{
			name:     "месячный план добавляет один календарный месяц",
			planType: models.PlanMonthly,
			want:     ptr(date(2025, time.November, 14)),
		},
		{
			name:     "семестровый план добавляет шесть месяцев",
			planType: models.PlanSemester,
			want:     ptr(date(2026, time.April, 14)),
		},
		{
			name:     "годовой план добавляет один год",
			planType: models.PlanAnnual,
			want:     ptr(date(2026, time.October, 14)),
		},
		{
			name:     "lifetime не имеет даты окончания",
			planType: models.PlanLifetime,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateEndDate(start, tt.planType)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
			assert.True(t, got.After(start), "дата окончания должна быть строго позже начала")
		})
	}
}

func TestCalculateEndDate_MonthEndOverflow(t *testing.T) {
	// 31 января + 1 месяц нормализуется переносом вперёд (правило AddDate)
	got := CalculateEndDate(date(2025, time.January, 31), models.PlanMonthly)
	require.NotNil(t, got)
	assert.Equal(t, date(2025, time.March, 3), *got)
}

func TestIsActiveAt(t *testing.T) {
	now := date(2025, time.October, 14)
	future := date(2026, time.January, 1)
	past := date(2025, time.October, 13)

	tests := []struct {
		name string
		m    models.Membership
		want bool
	}{
		{
			name: "активный план с датой в будущем",
			m:    models.Membership{Status: models.StatusActive, PlanType: models.PlanAnnual, EndDate: &future},
			want: true,
		},
		{
			name: "lifetime активен независимо от даты окончания",
			m:    models.Membership{Status: models.StatusActive, PlanType: models.PlanLifetime},
			want: true,
		},
		{
			name: "статус cancelled неактивен даже с будущей датой",
			m:    models.Membership{Status: models.StatusCancelled, PlanType: models.PlanAnnual, EndDate: &future},
			want: false,
		},
		{
			name: "статус pending неактивен",
			m:    models.Membership{Status: models.StatusPending, PlanType: models.PlanLifetime},
			want: false,
		},
		{
			name: "дата окончания вчера",
			m:    models.Membership{Status: models.StatusActive, PlanType: models.PlanMonthly, EndDate: &past},
			want: false,
		},
		{
			name: "отсутствие даты окончания у не-lifetime плана",
			m:    models.Membership{Status: models.StatusActive, PlanType: models.PlanMonthly},
			want: false,
		},
		{
			name: "дата окончания ровно сейчас не считается будущей",
			m:    models.Membership{Status: models.StatusActive, PlanType: models.PlanMonthly, EndDate: &now},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActiveAt(tt.m, now))
		})
	}
}

func TestSummarize(t *testing.T) {
	now := date(2025, time.October, 14)

	t.Run("lifetime без даты окончания", func(t *testing.T) {
		s := Summarize(models.Membership{
			Status:   models.StatusActive,
			PlanType: models.PlanLifetime,
		}, now)
		assert.True(t, s.IsActive)
		assert.Nil(t, s.ExpiresAt)
		assert.Nil(t, s.DaysRemaining)
		assert.False(t, s.IsExpiringSoon)
	})

	t.Run("остаток дней округляется вверх", func(t *testing.T) {
		end := now.Add(36 * time.Hour)
		s := Summarize(models.Membership{
			Status:   models.StatusActive,
			PlanType: models.PlanMonthly,
			EndDate:  &end,
		}, now)
		require.NotNil(t, s.DaysRemaining)
		assert.Equal(t, 2, *s.DaysRemaining)
		assert.True(t, s.IsExpiringSoon)
	})

	t.Run("истёкшее членство не сообщает остаток дней", func(t *testing.T) {
		end := now.AddDate(0, 0, -1)
		s := Summarize(models.Membership{
			Status:   models.StatusActive,
			PlanType: models.PlanMonthly,
			EndDate:  &end,
		}, now)
		assert.False(t, s.IsActive)
		assert.Nil(t, s.DaysRemaining)
		assert.False(t, s.IsExpiringSoon, "IsExpiringSoon не выставляется при неположительном остатке")
	})

	t.Run("далёкая дата окончания вне окна 30 дней", func(t *testing.T) {
		end := now.AddDate(1, 0, 0)
		s := Summarize(models.Membership{
			Status:   models.StatusActive,
			PlanType: models.PlanAnnual,
			EndDate:  &end,
		}, now)
		require.NotNil(t, s.DaysRemaining)
		assert.False(t, s.IsExpiringSoon)
	})

	t.Run("граница окна в 30 дней включительно", func(t *testing.T) {
		end := now.AddDate(0, 0, 30)
		s := Summarize(models.Membership{
			Status:   models.StatusActive,
			PlanType: models.PlanSemester,
			EndDate:  &end,
		}, now)
		require.NotNil(t, s.DaysRemaining)
		assert.Equal(t, 30, *s.DaysRemaining)
		assert.True(t, s.IsExpiringSoon)
	})
}

func ptr(t time.Time) *time.Time { return &t }
