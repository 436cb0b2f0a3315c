// Package deployments turns the raw field deployment sheet into the canonical
// deployments table.
//
// Each non-blank sheet row becomes one deployment whose ID is
// "{siteID}_{cameraSerial}". Start and end dates are normalized through the
// timestamp package: a missing start time means midnight, a missing end time
// means 23:59:59, and the zone comes from the row's offset column, the
// "EndTime <TZ>" header, or the configured default. Rows that fail to parse,
// reuse an existing deploymentID, or end before they start are rejected and
// reported; the remaining rows are still written.
package deployments
