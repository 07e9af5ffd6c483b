package neo4j

// seq keeps the import order; graphs created by other tools have no seq
// and are ordered by id after the imported records.
const (
	listRisksQuery = `
MATCH (r:Risk)
RETURN r.id AS id, r.name AS name, r.level AS level, r.categories AS categories,
       r.status AS status, r.origin AS origin, r.probability AS probability,
       r.impact AS impact, r.owner AS owner, r.description AS description,
       r.activation_condition AS activation_condition,
       r.activation_decision_date AS activation_decision_date
ORDER BY r.seq, r.id`

	listTPOsQuery = `
MATCH (t:TPO)
RETURN t.id AS id, t.reference AS reference, t.name AS name,
       t.cluster AS cluster, t.description AS description
ORDER BY t.seq, t.reference, t.id`

	listMitigationsQuery = `
MATCH (m:Mitigation)
RETURN m.id AS id, m.name AS name, m.type AS type, m.status AS status,
       m.owner AS owner, m.source_entity AS source_entity, m.description AS description
ORDER BY m.seq, m.id`

	listInfluencesQuery = `
MATCH (s:Risk)-[i:INFLUENCES]->(t:Risk)
RETURN i.id AS id, s.id AS source_id, t.id AS target_id, i.strength AS strength,
       i.confidence AS confidence, i.description AS description
ORDER BY i.seq, i.id, s.id, t.id`

	listTPOImpactsQuery = `
MATCH (r:Risk)-[i:IMPACTS_TPO]->(t:TPO)
RETURN i.id AS id, r.id AS risk_id, t.id AS tpo_id, i.impact_level AS impact_level,
       i.description AS description
ORDER BY i.seq, i.id, r.id, t.id`

	listMitigatesQuery = `
MATCH (m:Mitigation)-[i:MITIGATES]->(r:Risk)
RETURN i.id AS id, m.id AS mitigation_id, r.id AS risk_id,
       i.effectiveness AS effectiveness, i.description AS description
ORDER BY i.seq, i.id, m.id, r.id`

	deleteGraphQuery = `
MATCH (n) WHERE n:Risk OR n:TPO OR n:Mitigation
DETACH DELETE n`

	createRisksQuery = `
UNWIND $rows AS row
CREATE (r:Risk)
SET r = row`

	createTPOsQuery = `
UNWIND $rows AS row
CREATE (t:TPO)
SET t = row`

	createMitigationsQuery = `
UNWIND $rows AS row
CREATE (m:Mitigation)
SET m = row`

	createInfluencesQuery = `
UNWIND $rows AS row
MATCH (s:Risk {id: row.source_id}), (t:Risk {id: row.target_id})
CREATE (s)-[i:INFLUENCES]->(t)
SET i = row.props`

	createTPOImpactsQuery = `
UNWIND $rows AS row
MATCH (r:Risk {id: row.risk_id}), (t:TPO {id: row.tpo_id})
CREATE (r)-[i:IMPACTS_TPO]->(t)
SET i = row.props`

	createMitigatesQuery = `
UNWIND $rows AS row
MATCH (m:Mitigation {id: row.mitigation_id}), (r:Risk {id: row.risk_id})
CREATE (m)-[i:MITIGATES]->(r)
SET i = row.props`
)
