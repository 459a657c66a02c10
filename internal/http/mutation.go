package http

import "comptes/internal/datasource"

// mutationResponse turns the outcome of a successful mutation into refetch
// events. Views the response renders itself are left out of the events. A
// failed reload is reported as a warning in place of the success message; it
// never turns the mutation into a failure. The datasource already logged it.
func (s *Server) mutationResponse(outcome datasource.Outcome, success string, rendered ...datasource.View) *HTMXResponseBuilder {
	skip := make(map[string]struct{}, len(rendered))
	for _, v := range rendered {
		skip[v.Event()] = struct{}{}
	}
	var events []string
	for _, ev := range outcome.Events() {
		if _, ok := skip[ev]; !ok {
			events = append(events, ev)
		}
	}

	resp := NewHTMXResponse().TriggerEvents(events...)
	switch {
	case outcome.RefetchErr != nil:
		s.appMetrics.refetchFailures.Add(1)
		resp.TriggerWarningNotification(msgRefetchWarning)
	case success != "":
		resp.TriggerSuccessNotification(success)
	}
	return resp
}
