package workcal_test

// Embed the zone database so tests do not depend on the host's zoneinfo.
import _ "time/tzdata"
