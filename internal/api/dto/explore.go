package dto

// ExploreSearchReq 探索页搜索
type ExploreSearchReq struct {
	Keyword string `form:"keyword" binding:"required,max=100"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	Size    int    `form:"size,default=20" binding:"min=1,max=50"`
}

// ExploreResultDTO 探索页搜索结果，帖子和用户混排返回
type ExploreResultDTO struct {
	Posts []*PostDTO `json:"posts"`
	Users []*UserDTO `json:"users"`
}
