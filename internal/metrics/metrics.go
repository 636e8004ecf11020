// Package metrics определяет счётчики Prometheus для ключевых операций:
// решений о доступе к закрытому контенту и выданных кодов входа.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AccessDecisions считает решения о доступе с меткой причины отказа;
// для выданного доступа используется метка "granted".
var AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "membership_access_decisions_total",
	Help: "Premium access decisions by outcome.",
}, []string{"reason"})

// LoginCodesIssued считает отправленные одноразовые коды входа.
var LoginCodesIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "auth_login_codes_issued_total",
	Help: "One-time login codes sent by email.",
})

// SessionsIssued считает выданные сессии по способу входа: code или link.
var SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "auth_sessions_issued_total",
	Help: "Sessions issued after successful authentication.",
}, []string{"method"})
