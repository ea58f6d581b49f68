package authority

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is the closed set of roles known to the workflow engine. Permission
// checks compare roles case-sensitively against the allow-list configured on
// each transition.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProgramManager Role = "program_manager"
	RoleProducer       Role = "producer"
	RoleEditor         Role = "editor"
	RoleMusicReviewer  Role = "music_reviewer"
	RoleEmployee       Role = "employee"
)

var allRoles = []Role{
	RoleAdmin, RoleProgramManager, RoleProducer, RoleEditor, RoleMusicReviewer, RoleEmployee,
}

func IsKnownRole(r Role) bool {
	for _, v := range allRoles {
		if v == r {
			return true
		}
	}
	return false
}

type RoleList []Role

func (c RoleList) Contains(role Role) bool {
	for _, v := range c {
		if v == role {
			return true
		}
	}
	return false
}

func (t RoleList) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *RoleList) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}
