package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout, generation runs for minutes
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	if data, ok := parsed["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	userToken := os.Getenv("TEST_USER_TOKEN")
	if userToken == "" {
		color.Red("TEST_USER_TOKEN is not set")
		os.Exit(1)
	}

	color.Cyan("🚀 Starting Generation Pipeline API Test\n")

	// 1. Create a novel with a staged outline
	color.Yellow("\n[USER] 1. Create Novel")
	novelReq := map[string]interface{}{
		"title":   "星环之下",
		"genre":   "科幻",
		"premise": "一名维修工在轨道城市发现了被抹去的历史。",
		"outline": "**第一幕: 觉醒 (第1-5章)**\n核心概述: 主角发现异常\n---\n第1章: 例行检修\n第2章: 异常信号\n第3章: 被删除的记录\n",
	}
	resp, body, err := sendRequest("POST", "/novel/v1", userToken, novelReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var novelID string
	if data := dataField(body); data != nil {
		if id, ok := data["id"].(string); ok {
			novelID = id
			fmt.Printf("Created Novel ID: %s\n", novelID)
		}
	}
	if novelID == "" {
		color.Red("No novel ID returned, aborting")
		os.Exit(1)
	}

	// 2. Generate a small batch of chapters
	color.Yellow("\n[USER] 2. Generate Batch (2 chapters)")
	batchReq := map[string]interface{}{
		"count":       2,
		"user_prompt": "第一章从主角的日常检修写起。",
	}
	resp, body, err = sendRequest("POST", "/novel/v1/"+novelID+"/generation/batch", userToken, batchReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	if data := dataField(body); data != nil {
		fmt.Printf("State: %v, Completed: %v/%v\n", data["state"], data["completed"], data["requested"])
	}

	// 3. List generated chapters
	color.Yellow("\n[USER] 3. List Chapters")
	resp, body, err = sendRequest("GET", "/novel/v1/"+novelID+"/chapter", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)
	prettyPrint(listResp)

	// 4. Compliance check on the first chapter
	color.Yellow("\n[USER] 4. Check Compliance (Chapter 1)")
	resp, body, err = sendRequest("GET", "/novel/v1/"+novelID+"/generation/compliance/1", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			fmt.Printf("Compliant: %v, Reason: %v\n", data["compliant"], data["reason"])
		}
	}

	// 5. Semantic search over the generated content
	color.Yellow("\n[USER] 5. Semantic Search")
	searchReq := map[string]interface{}{
		"query": "主角发现了什么秘密",
		"limit": 3,
	}
	resp, body, err = sendRequest("POST", "/novel/v1/"+novelID+"/semantic-search", userToken, searchReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var searchResp map[string]interface{}
		json.Unmarshal(body, &searchResp)
		prettyPrint(searchResp)
	}

	// 6. Cleanup
	color.Yellow("\n[USER] 6. Cleanup: Delete Novel")
	resp, _, err = sendRequest("DELETE", "/novel/v1/"+novelID, userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
	}

	color.Cyan("\n✅ Test Sequence Complete")
}
