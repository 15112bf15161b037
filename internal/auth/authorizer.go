package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nklact/normaai/internal/domain"
	"github.com/nklact/normaai/internal/services"
)

// PlanAuthorizer maps the caller's subscription plan to a contract-generation
// decision. Trial accounts get none, Individual gets a monthly quota, paid
// team plans are unlimited.
//
// Authorize only checks the quota; the pipeline reports back through
// RecordGeneration once a document actually exists, so a failed generation
// never consumes quota. Usage is counted in memory per user and calendar
// month. Counts reset on restart; the account service remains the system of
// record for billing.
type PlanAuthorizer struct {
	monthlyLimit int

	mu    sync.Mutex
	usage map[string]int
}

func NewPlanAuthorizer(monthlyLimit int) *PlanAuthorizer {
	if monthlyLimit <= 0 {
		monthlyLimit = 5
	}
	return &PlanAuthorizer{
		monthlyLimit: monthlyLimit,
		usage:        map[string]int{},
	}
}

func (a *PlanAuthorizer) Authorize(_ context.Context, user domain.UserContext) services.Decision {
	switch user.Plan {
	case domain.PlanTrialUnregistered, domain.PlanTrialRegistered:
		return services.Decision{
			Reason: "Contract generation requires at least an Individual plan. Please upgrade your account.",
		}

	case domain.PlanIndividual:
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.usage[monthKey(user.UserID, time.Now())] >= a.monthlyLimit {
			return services.Decision{
				Reason: fmt.Sprintf(
					"You have reached the monthly contract generation limit (%d/month on the Individual plan). Upgrade to Professional for unlimited access.",
					a.monthlyLimit,
				),
			}
		}
		return services.Decision{Allowed: true}

	case domain.PlanProfessional, domain.PlanTeam, domain.PlanPremium:
		return services.Decision{Allowed: true}
	}

	return services.Decision{Reason: "Unknown account type."}
}

// RecordGeneration counts one successful generation against the caller's
// monthly quota. Only metered plans keep usage.
func (a *PlanAuthorizer) RecordGeneration(_ context.Context, user domain.UserContext) {
	if user.Plan != domain.PlanIndividual {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage[monthKey(user.UserID, time.Now())]++
}

func monthKey(userID string, now time.Time) string {
	return fmt.Sprintf("%s/%s", userID, now.Format("2006-01"))
}
