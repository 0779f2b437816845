package mcpserver

// StatusModelContract explains how key result statuses are derived so that
// an LLM coach reads dashboards the same way the engine computes them.
const StatusModelContract = `# okrtrack Status Model

Every key result has a cumulative target reached at the end of its period.
Progress is recorded weekly as a cumulative value, never as a delta.

## Weeks

- Weeks start on Monday. Week 1 is the week containing the period start date,
  even when the period starts mid-week.
- The current week is clamped to the period: before the start it is week 1,
  after the end it is the last week.

## Trajectory

- ` + "`linear`" + ` key results expect ` + "`target * week / total_weeks`" + ` by the end of each week.
- ` + "`manual`" + ` key results carry an explicit list of weekly targets, one per week.
  Changing the final target rescales the list proportionally.

## Status

The engine finds the latest week whose expected value is already covered by the
actual value (the equivalent week) and measures how many weeks behind the
current week that is.

| Weeks behind | Status            |
|--------------|-------------------|
| 0            | ` + "`on-track`" + `        |
| 1            | ` + "`needs-attention`" + ` |
| 2 or more    | ` + "`behind`" + `          |

- A key result with no check-ins is evaluated as zero progress.
- The newest check-in by recording time wins; earlier weeks are carried forward.
- An objective takes the worst status of its key results, and the dashboard
  takes the worst status of its objectives.

## Coaching

- Prefer the ` + "`get_dashboard`" + ` tool for the overall picture and
  ` + "`get_key_result_series`" + ` to see the expected curve against actuals.
- Record new values with ` + "`record_progress`" + `; the week defaults to the current one.
- Weekly reflections carry a confidence score from 0 to 10. Falling confidence with
  an on-track status is worth raising.
`
