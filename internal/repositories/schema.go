package repositories

// RecordsTableDDL creates the demo table. Bootstrap only; there are no
// migrations.
const RecordsTableDDL = `
	CREATE TABLE IF NOT EXISTS records (
		id    UUID PRIMARY KEY,
		value VARCHAR
	)`
